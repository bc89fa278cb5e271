package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents the users table. The password hash is never serialized.
type User struct {
	ID uint `gorm:"primarykey" json:"id"`

	Email string `gorm:"uniqueIndex;not null" json:"email"`
	// Username is optional; NULL rows do not participate in the unique index.
	Username  *string `gorm:"uniqueIndex" json:"username,omitempty"`
	FullName  string  `json:"full_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`

	HashedPassword string `gorm:"not null" json:"-"`

	IsActive    bool `gorm:"default:true;not null" json:"is_active"`
	IsSuperuser bool `gorm:"default:false;not null" json:"is_superuser"`
	IsVerified  bool `gorm:"default:false;not null" json:"is_verified"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	LastLogin  *time.Time `json:"last_login,omitempty"`
	LoginCount int        `gorm:"default:0;not null" json:"login_count"`
}

func (User) TableName() string {
	return "users"
}

// IsDeleted reports whether the user has been soft deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt.Valid
}
