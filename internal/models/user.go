package models

import (
	"time"
)

// UserStatus gates whether a customer may place orders
type UserStatus string

const (
	UserActive    UserStatus = "Active"
	UserSuspended UserStatus = "Suspended"
)

// Valid reports whether s is a known account status
func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserSuspended
}

type User struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	Email     string     `json:"email" gorm:"uniqueIndex;not null"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	IsAdmin   bool       `json:"isAdmin"`
	Status    UserStatus `json:"status" gorm:"default:'Active'"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Role is the token role derived from the admin flag
func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Suspended reports whether the account is blocked from ordering
func (u *User) Suspended() bool {
	return u.Status == UserSuspended
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Actor is the authenticated caller as seen by the ordering core
type Actor struct {
	UserID  string
	IsAdmin bool
}
