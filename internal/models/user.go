package models

import (
	"time"
)

// RoleAdmin is the only role a UserAccount can hold.
const RoleAdmin = "admin"

// UserAccount represents an administrator of the customer application.
type UserAccount struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Email     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed in JSON
	Role      string     `gorm:"size:20;not null;default:'admin'" json:"role"`
	LastLogin *time.Time `gorm:"index" json:"last_login,omitempty"`
}

// TableName keeps the historical table name.
func (UserAccount) TableName() string { return "brukere" }

// ClientAccount represents a customer contact with portal access.
type ClientAccount struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Email     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	Company   string     `gorm:"size:255" json:"company,omitempty"`
	LastLogin *time.Time `gorm:"index" json:"last_login,omitempty"`
}

// TableName keeps the historical table name.
func (ClientAccount) TableName() string { return "klient_brukere" }

// LoginEvent is one row of the login tail, merged from both account tables.
type LoginEvent struct {
	Kind    string // "user" or "client"
	ID      uint
	Name    string
	Email   string
	Company string
	At      time.Time
}
