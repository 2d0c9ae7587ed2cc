package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID          string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Role        string         `gorm:"default:'citizen'" json:"role"`
	Points      int            `gorm:"default:0" json:"points"`
	ReportCount int            `gorm:"default:0" json:"report_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName is "first last" trimmed, falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return u.Email
}

// Profile is the public projection served to the reporter name join.
type Profile struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// LeaderboardEntry is one row of the community leaderboard.
type LeaderboardEntry struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Reports int    `json:"reports"`
}
