package models

import "time"

// Weapon is an item of the club arsenal.
type Weapon struct {
	ID        string
	Name      string
	Caliber   string
	Owner     string
	UserID    *string // Member who registered it
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeaponStats counts the arsenal by caliber and by owner.
type WeaponStats struct {
	Total     int
	ByCaliber map[string]int
	ByOwner   map[string]int
}
