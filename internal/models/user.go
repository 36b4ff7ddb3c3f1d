// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Default profile images assigned at signup when none is given.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a Warbler account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	ImageURL       string    `gorm:"default:'/static/images/default-pic.png'" json:"image_url"`
	HeaderImageURL string    `gorm:"default:'/static/images/warbler-hero.jpg'" json:"header_image_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Location       string    `gorm:"type:varchar(100)" json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
