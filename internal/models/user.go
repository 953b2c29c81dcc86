package models

import (
	"time"

	"gorm.io/datatypes"
)

// Preferences are per-user display settings. The analytics layer does not
// consume them; they only travel with the profile.
type Preferences struct {
	Theme    string `json:"theme"`
	Timezone string `json:"timezone"`
	Currency string `json:"currency"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: "light", Timezone: "UTC", Currency: "USD"}
}

// User owns trades. Every trade query is scoped by User.ID.
type User struct {
	ID           string                            `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Username     string                            `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email        string                            `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string                            `gorm:"size:255;not null" json:"-"`
	Nickname     string                            `gorm:"size:30" json:"nickname"`
	FirstName    string                            `gorm:"size:50" json:"first_name"`
	LastName     string                            `gorm:"size:50" json:"last_name"`
	Avatar       string                            `gorm:"size:255" json:"avatar"`
	Preferences  datatypes.JSONType[Preferences]   `json:"preferences"`
	IsActive     bool                              `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time                        `json:"last_login_at"`
	LastLoginIP  string                            `gorm:"size:45" json:"last_login_ip"`
	CreatedAt    time.Time                         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
