// Package domain defines the persistence models for users and sessions.
// These types are mapped with GORM and form the state the gateway manages:
// stored credentials and server-side session records.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User represents a stored credential record created at registration.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: handle derived from the email at registration; indexed.
//   - FirstName / LastName: display name parts (LastName optional).
//   - Email: login identifier; unique across all users.
//   - PasswordHash: bcrypt hash of the password; never serialized.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type User struct {
	ID           string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Username     string         `json:"username"   gorm:"type:varchar(128);not null;index"`
	FirstName    string         `json:"firstName"  gorm:"type:varchar(128);not null"`
	LastName     string         `json:"lastName"   gorm:"type:varchar(128)"`
	Email        string         `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string         `json:"-"          gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Session is the durable representation of a session record. The ID is the
// opaque token carried (signed) in the client cookie. UserID is empty for
// anonymous sessions and set on login.
type Session struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);index"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Authenticated reports whether the session carries a logged-in user.
func (s *Session) Authenticated() bool { return s != nil && s.UserID != "" }

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool { return s == nil || now.After(s.ExpiresAt) }

// Principal is the authenticated identity attached to a request once login
// succeeds. It is read-only for the remainder of the request.
type Principal struct {
	UserID      string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// PrincipalFromUser builds a Principal view of a stored user.
func PrincipalFromUser(u *User) *Principal {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return &Principal{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: name,
	}
}
