package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/repositories"
	pkgauth "github.com/BradenHooton/tiro/pkg/auth"
	pkglogger "github.com/BradenHooton/tiro/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testAudit() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}

const testPassword = "secret123"

var (
	hashOnce sync.Once
	hashed   string
)

// testPasswordHash hashes testPassword once per test binary.
func testPasswordHash() string {
	hashOnce.Do(func() {
		h, err := pkgauth.HashPassword(testPassword)
		if err != nil {
			panic(err)
		}
		hashed = h
	})
	return hashed
}

func newTestUser(id, username string) *models.User {
	return &models.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: testPasswordHash(),
		FullName:     "Test " + username,
		IsActive:     true,
	}
}

// MockLoginDelayer records each padded login outcome.
type MockLoginDelayer struct {
	Calls []bool
}

func (m *MockLoginDelayer) WaitFrom(ctx context.Context, start time.Time, success bool) {
	m.Calls = append(m.Calls, success)
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc         func(ctx context.Context, id string) (*models.User, error)
	GetByUsernameFunc   func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*models.User, error)
	GetByLoginFunc      func(ctx context.Context, login string) (*models.User, error)
	CreateFunc          func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfileFunc   func(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error)
	UpdatePasswordFunc  func(ctx context.Context, id, passwordHash string) error
	UpdateLastLoginFunc func(ctx context.Context, id string, at time.Time) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if m.GetByLoginFunc != nil {
		return m.GetByLoginFunc(ctx, login)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, update)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id, at)
	}
	return nil
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	IssueFunc func(user *models.User) (string, time.Time, error)
}

func (m *MockTokenIssuer) Issue(user *models.User) (string, time.Time, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(user)
	}
	return "token-" + user.ID, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), nil
}

// MockTokenAuthenticator implements TokenAuthenticator for testing
type MockTokenAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, token string) (*models.User, error)
}

func (m *MockTokenAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	return nil, models.ErrUnauthorized
}

// MockProgressTx is an in-memory ProgressTx. UpsertCalls counts writes.
type MockProgressTx struct {
	Sessions    []*models.TrainingSession
	Levels      []*models.Level
	Snapshot    *models.ProgressSnapshot
	UpsertCalls int
	Err         error
	now         func() time.Time
}

func (m *MockProgressTx) ListSessionsByUser(ctx context.Context, userID string) ([]*models.TrainingSession, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*models.TrainingSession
	for _, s := range m.Sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockProgressTx) ListLevels(ctx context.Context) ([]*models.Level, error) {
	return m.Levels, nil
}

func (m *MockProgressTx) GetSnapshotForUpdate(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	if m.Snapshot == nil || m.Snapshot.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *m.Snapshot
	return &cp, nil
}

func (m *MockProgressTx) UpsertSnapshot(ctx context.Context, s *models.ProgressSnapshot) (*models.ProgressSnapshot, error) {
	m.UpsertCalls++
	cp := *s
	if m.Snapshot != nil {
		cp.ID = m.Snapshot.ID
	} else {
		cp.ID = "snap-1"
	}
	if m.now != nil {
		cp.UpdatedAt = m.now()
	} else {
		cp.UpdatedAt = time.Now()
	}
	m.Snapshot = &cp
	out := cp
	return &out, nil
}

// MockProgressStore runs InTx against Tx and serves GetByUserID from it.
type MockProgressStore struct {
	Tx              *MockProgressTx
	GetByUserIDFunc func(ctx context.Context, userID string) (*models.ProgressSnapshot, error)
	InTxErr         error
}

func (m *MockProgressStore) GetByUserID(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	if m.Tx == nil {
		return nil, models.ErrNotFound
	}
	return m.Tx.GetSnapshotForUpdate(ctx, userID)
}

func (m *MockProgressStore) InTx(ctx context.Context, fn func(tx repositories.ProgressTx) error) error {
	if m.InTxErr != nil {
		return m.InTxErr
	}
	return fn(m.Tx)
}

// MockLevelRepository implements LevelRepository for testing
type MockLevelRepository struct {
	ListFunc   func(ctx context.Context) ([]*models.Level, error)
	CreateFunc func(ctx context.Context, level *models.Level) (*models.Level, error)
}

func (m *MockLevelRepository) List(ctx context.Context) ([]*models.Level, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return defaultLevels(), nil
}

func (m *MockLevelRepository) Create(ctx context.Context, level *models.Level) (*models.Level, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, level)
	}
	level.ID = "level-new"
	return level, nil
}

func defaultLevels() []*models.Level {
	return []*models.Level{
		{ID: "l0", Name: "Sem Nível", MinScore: 0, Order: 0},
		{ID: "l1", Name: "Nível I", MinScore: 50, Order: 1},
		{ID: "l2", Name: "Nível II", MinScore: 100, Order: 2},
		{ID: "l3", Name: "Nível III", MinScore: 150, Order: 3},
	}
}

// MockTrainingSessionRepository implements TrainingSessionRepository for testing
type MockTrainingSessionRepository struct {
	ListFunc          func(ctx context.Context, f models.TrainingSessionFilter) ([]*models.TrainingSession, int, error)
	RecentFunc        func(ctx context.Context, userID string, limit int) ([]*models.TrainingSession, error)
	GetByIDFunc       func(ctx context.Context, userID, id string) (*models.TrainingSession, error)
	CreateFunc        func(ctx context.Context, s *models.TrainingSession) (*models.TrainingSession, error)
	UpdateFunc        func(ctx context.Context, s *models.TrainingSession) (*models.TrainingSession, error)
	DeleteFunc        func(ctx context.Context, userID, id string) error
	TotalsFunc        func(ctx context.Context, userID string) (*models.TrainingTotals, error)
	StatsByWeaponFunc func(ctx context.Context, userID string) ([]*models.WeaponTrainingStats, error)
}

func (m *MockTrainingSessionRepository) List(ctx context.Context, f models.TrainingSessionFilter) ([]*models.TrainingSession, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, 0, nil
}

func (m *MockTrainingSessionRepository) Recent(ctx context.Context, userID string, limit int) ([]*models.TrainingSession, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *MockTrainingSessionRepository) GetByID(ctx context.Context, userID, id string) (*models.TrainingSession, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockTrainingSessionRepository) Create(ctx context.Context, s *models.TrainingSession) (*models.TrainingSession, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	s.ID = "session-new"
	return s, nil
}

func (m *MockTrainingSessionRepository) Update(ctx context.Context, s *models.TrainingSession) (*models.TrainingSession, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, s)
	}
	return s, nil
}

func (m *MockTrainingSessionRepository) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockTrainingSessionRepository) Totals(ctx context.Context, userID string) (*models.TrainingTotals, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx, userID)
	}
	return &models.TrainingTotals{}, nil
}

func (m *MockTrainingSessionRepository) StatsByWeapon(ctx context.Context, userID string) ([]*models.WeaponTrainingStats, error) {
	if m.StatsByWeaponFunc != nil {
		return m.StatsByWeaponFunc(ctx, userID)
	}
	return nil, nil
}

// MockWeaponRepository implements WeaponRepository for testing
type MockWeaponRepository struct {
	ListFunc          func(ctx context.Context) ([]*models.Weapon, error)
	ListByCaliberFunc func(ctx context.Context, caliber string) ([]*models.Weapon, error)
	ListByOwnerFunc   func(ctx context.Context, owner string) ([]*models.Weapon, error)
	GetByIDFunc       func(ctx context.Context, id string) (*models.Weapon, error)
	CreateFunc        func(ctx context.Context, w *models.Weapon) (*models.Weapon, error)
	UpdateFunc        func(ctx context.Context, w *models.Weapon) (*models.Weapon, error)
	DeleteFunc        func(ctx context.Context, id string) error
	StatsFunc         func(ctx context.Context) (*models.WeaponStats, error)
}

func (m *MockWeaponRepository) List(ctx context.Context) ([]*models.Weapon, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockWeaponRepository) ListByCaliber(ctx context.Context, caliber string) ([]*models.Weapon, error) {
	if m.ListByCaliberFunc != nil {
		return m.ListByCaliberFunc(ctx, caliber)
	}
	return nil, nil
}

func (m *MockWeaponRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Weapon, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *MockWeaponRepository) GetByID(ctx context.Context, id string) (*models.Weapon, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockWeaponRepository) Create(ctx context.Context, w *models.Weapon) (*models.Weapon, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, w)
	}
	w.ID = "weapon-new"
	return w, nil
}

func (m *MockWeaponRepository) Update(ctx context.Context, w *models.Weapon) (*models.Weapon, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, w)
	}
	return w, nil
}

func (m *MockWeaponRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockWeaponRepository) Stats(ctx context.Context) (*models.WeaponStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.WeaponStats{ByCaliber: map[string]int{}, ByOwner: map[string]int{}}, nil
}

// MockCompetitionRepository implements CompetitionRepository for testing
type MockCompetitionRepository struct {
	ListFunc       func(ctx context.Context) ([]*models.Competition, error)
	GetByIDFunc    func(ctx context.Context, id string) (*models.Competition, error)
	CreateFunc     func(ctx context.Context, c *models.Competition) (*models.Competition, error)
	AddScoreFunc   func(ctx context.Context, s *models.CompetitionScore) (*models.CompetitionScore, error)
	ListScoresFunc func(ctx context.Context, competitionID string, newestFirst bool) ([]*models.CompetitionScore, error)
	RankingFunc    func(ctx context.Context) ([]*models.CompetitionScore, error)
	StatsFunc      func(ctx context.Context) (*models.CompetitionStats, error)
}

func (m *MockCompetitionRepository) List(ctx context.Context) ([]*models.Competition, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockCompetitionRepository) GetByID(ctx context.Context, id string) (*models.Competition, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCompetitionRepository) Create(ctx context.Context, c *models.Competition) (*models.Competition, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	c.ID = "comp-new"
	return c, nil
}

func (m *MockCompetitionRepository) AddScore(ctx context.Context, s *models.CompetitionScore) (*models.CompetitionScore, error) {
	if m.AddScoreFunc != nil {
		return m.AddScoreFunc(ctx, s)
	}
	s.ID = "score-new"
	return s, nil
}

func (m *MockCompetitionRepository) ListScores(ctx context.Context, competitionID string, newestFirst bool) ([]*models.CompetitionScore, error) {
	if m.ListScoresFunc != nil {
		return m.ListScoresFunc(ctx, competitionID, newestFirst)
	}
	return nil, nil
}

func (m *MockCompetitionRepository) Ranking(ctx context.Context) ([]*models.CompetitionScore, error) {
	if m.RankingFunc != nil {
		return m.RankingFunc(ctx)
	}
	return nil, nil
}

func (m *MockCompetitionRepository) Stats(ctx context.Context) (*models.CompetitionStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.CompetitionStats{}, nil
}
