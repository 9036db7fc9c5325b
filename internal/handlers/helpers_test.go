package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/tiro/internal/auth"
	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/progress"
	"github.com/BradenHooton/tiro/internal/services"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

const (
	testUserID   = "6f1c2a52-3c1e-4b8e-9a57-1d2a3b4c5d6e"
	testWeaponID = "0b7e8c1d-2f3a-4b5c-8d9e-0f1a2b3c4d5e"
	testCompID   = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

func testCaller() *models.User {
	return &models.User{ID: testUserID, Username: "atirador", Email: "atirador@example.com", IsActive: true}
}

// newTestRequest creates an HTTP request with a JSON body.
func newTestRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withCaller stores the authenticated account in the request context.
func withCaller(req *http.Request) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), testCaller()))
}

// withURLParams attaches chi route parameters.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func assertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, status int, target any) {
	t.Helper()
	assert.Equal(t, status, w.Code, "status mismatch: %s", w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	if target != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
	}
}

func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	var resp pkghttp.ErrorResponse
	assertJSONResponse(t, w, status, &resp)
	if code != "" {
		assert.Equal(t, code, resp.Error)
	}
	if message != "" {
		assert.Equal(t, message, resp.Message)
	}
}

// MockAuthService implements AuthService for testing
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, in services.RegisterInput, meta services.RequestMeta) (*services.AuthResult, error)
	LoginFunc          func(ctx context.Context, login, password string, meta services.RequestMeta) (*services.AuthResult, error)
	ChangePasswordFunc func(ctx context.Context, user *models.User, current, next string, meta services.RequestMeta) error
	VerifyTokenFunc    func(ctx context.Context, token string) (*models.User, error)
	LogoutCalls        int
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput, meta services.RequestMeta) (*services.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in, meta)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, login, password string, meta services.RequestMeta) (*services.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, login, password, meta)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) ChangePassword(ctx context.Context, user *models.User, current, next string, meta services.RequestMeta) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, user, current, next, meta)
	}
	return nil
}

func (m *MockAuthService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, token)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Logout(ctx context.Context, user *models.User, meta services.RequestMeta) {
	m.LogoutCalls++
}

// MockProfileService implements ProfileService for testing
type MockProfileService struct {
	GetProfileFunc    func(ctx context.Context, id string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
}

func (m *MockProfileService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, id)
	}
	return testCaller(), nil
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, update)
	}
	return testCaller(), nil
}

// MockProgressService implements ProgressService for testing
type MockProgressService struct {
	RecomputeFunc   func(ctx context.Context, userID string) (*models.ProgressSnapshot, error)
	GetProgressFunc func(ctx context.Context, userID string) (*models.ProgressSnapshot, error)
	NextLevelFunc   func(ctx context.Context, userID string) (*progress.Projection, error)
}

func (m *MockProgressService) Recompute(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	if m.RecomputeFunc != nil {
		return m.RecomputeFunc(ctx, userID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockProgressService) GetProgress(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	if m.GetProgressFunc != nil {
		return m.GetProgressFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockProgressService) NextLevel(ctx context.Context, userID string) (*progress.Projection, error) {
	if m.NextLevelFunc != nil {
		return m.NextLevelFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

// MockLevelService implements LevelService for testing
type MockLevelService struct {
	ListFunc   func(ctx context.Context) ([]*models.Level, error)
	CreateFunc func(ctx context.Context, in services.LevelInput) (*models.Level, error)
}

func (m *MockLevelService) List(ctx context.Context) ([]*models.Level, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockLevelService) Create(ctx context.Context, in services.LevelInput) (*models.Level, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &models.Level{ID: "new", Name: in.Name, Message: in.Message, MinScore: in.MinScore, Order: in.Order}, nil
}

// MockTrainingService implements TrainingService for testing
type MockTrainingService struct {
	ListFunc   func(ctx context.Context, userID, weaponID string, page, perPage int) (*services.TrainingPage, error)
	GetFunc    func(ctx context.Context, userID, id string) (*models.TrainingSession, error)
	CreateFunc func(ctx context.Context, userID string, in services.TrainingInput) (*models.TrainingSession, error)
	UpdateFunc func(ctx context.Context, userID, id string, in services.TrainingUpdate) (*models.TrainingSession, error)
	DeleteFunc func(ctx context.Context, userID, id string) error
	RecentFunc func(ctx context.Context, userID string, limit int) ([]*models.TrainingSession, error)
	StatsFunc  func(ctx context.Context, userID string) (*services.TrainingStats, error)
}

func (m *MockTrainingService) List(ctx context.Context, userID, weaponID string, page, perPage int) (*services.TrainingPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, weaponID, page, perPage)
	}
	return &services.TrainingPage{Page: page, PerPage: perPage}, nil
}

func (m *MockTrainingService) Get(ctx context.Context, userID, id string) (*models.TrainingSession, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockTrainingService) Create(ctx context.Context, userID string, in services.TrainingInput) (*models.TrainingSession, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, in)
	}
	return nil, models.ErrInternalServer
}

func (m *MockTrainingService) Update(ctx context.Context, userID, id string, in services.TrainingUpdate) (*models.TrainingSession, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, id, in)
	}
	return nil, models.ErrInternalServer
}

func (m *MockTrainingService) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockTrainingService) Recent(ctx context.Context, userID string, limit int) ([]*models.TrainingSession, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *MockTrainingService) Stats(ctx context.Context, userID string) (*services.TrainingStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID)
	}
	return &services.TrainingStats{}, nil
}

// MockWeaponService implements WeaponService for testing
type MockWeaponService struct {
	ListFunc      func(ctx context.Context) ([]*models.Weapon, error)
	ByCaliberFunc func(ctx context.Context, caliber string) ([]*models.Weapon, error)
	ByOwnerFunc   func(ctx context.Context, owner string) ([]*models.Weapon, error)
	GetFunc       func(ctx context.Context, id string) (*models.Weapon, error)
	CreateFunc    func(ctx context.Context, userID string, in services.WeaponInput) (*models.Weapon, error)
	UpdateFunc    func(ctx context.Context, id string, in services.WeaponUpdate) (*models.Weapon, error)
	DeleteFunc    func(ctx context.Context, id string) error
	StatsFunc     func(ctx context.Context) (*models.WeaponStats, error)
}

func (m *MockWeaponService) List(ctx context.Context) ([]*models.Weapon, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockWeaponService) ByCaliber(ctx context.Context, caliber string) ([]*models.Weapon, error) {
	if m.ByCaliberFunc != nil {
		return m.ByCaliberFunc(ctx, caliber)
	}
	return nil, nil
}

func (m *MockWeaponService) ByOwner(ctx context.Context, owner string) ([]*models.Weapon, error) {
	if m.ByOwnerFunc != nil {
		return m.ByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *MockWeaponService) Get(ctx context.Context, id string) (*models.Weapon, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrWeaponNotFound
}

func (m *MockWeaponService) Create(ctx context.Context, userID string, in services.WeaponInput) (*models.Weapon, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, in)
	}
	return &models.Weapon{ID: testWeaponID, Name: in.Name, Caliber: in.Caliber, Owner: in.Owner, UserID: &userID}, nil
}

func (m *MockWeaponService) Update(ctx context.Context, id string, in services.WeaponUpdate) (*models.Weapon, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return nil, models.ErrWeaponNotFound
}

func (m *MockWeaponService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockWeaponService) Stats(ctx context.Context) (*models.WeaponStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.WeaponStats{ByCaliber: map[string]int{}, ByOwner: map[string]int{}}, nil
}

// MockCompetitionService implements CompetitionService for testing
type MockCompetitionService struct {
	ListFunc      func(ctx context.Context) ([]*models.Competition, error)
	CreateFunc    func(ctx context.Context, name, description string) (*models.Competition, error)
	ScoresFunc    func(ctx context.Context, competitionID string) (*services.CompetitionScores, error)
	EvolutionFunc func(ctx context.Context, competitionID string) (*services.CompetitionScores, error)
	AddScoreFunc  func(ctx context.Context, userID, competitionID string, in services.ScoreInput) (*models.CompetitionScore, error)
	RankingFunc   func(ctx context.Context) ([]services.RankingGroup, error)
	StatsFunc     func(ctx context.Context) (*models.CompetitionStats, error)
}

func (m *MockCompetitionService) List(ctx context.Context) ([]*models.Competition, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockCompetitionService) Create(ctx context.Context, name, description string) (*models.Competition, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, name, description)
	}
	return &models.Competition{ID: testCompID, Name: name, Description: description}, nil
}

func (m *MockCompetitionService) Scores(ctx context.Context, competitionID string) (*services.CompetitionScores, error) {
	if m.ScoresFunc != nil {
		return m.ScoresFunc(ctx, competitionID)
	}
	return nil, models.ErrNotFound
}

func (m *MockCompetitionService) Evolution(ctx context.Context, competitionID string) (*services.CompetitionScores, error) {
	if m.EvolutionFunc != nil {
		return m.EvolutionFunc(ctx, competitionID)
	}
	return nil, models.ErrNotFound
}

func (m *MockCompetitionService) AddScore(ctx context.Context, userID, competitionID string, in services.ScoreInput) (*models.CompetitionScore, error) {
	if m.AddScoreFunc != nil {
		return m.AddScoreFunc(ctx, userID, competitionID, in)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCompetitionService) Ranking(ctx context.Context) ([]services.RankingGroup, error) {
	if m.RankingFunc != nil {
		return m.RankingFunc(ctx)
	}
	return nil, nil
}

func (m *MockCompetitionService) Stats(ctx context.Context) (*models.CompetitionStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.CompetitionStats{}, nil
}
