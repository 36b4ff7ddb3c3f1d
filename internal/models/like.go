package models

import "time"

// Like represents a user's endorsement of a message.
// The combination of UserID and MessageID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_message" json:"user_id"`
	MessageID uint      `gorm:"not null;uniqueIndex:idx_likes_user_message;index" json:"message_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message *Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}

// Counts are the four profile stats shown for a user.
type Counts struct {
	Messages  int64 `json:"messages"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Likes     int64 `json:"likes"`
}
