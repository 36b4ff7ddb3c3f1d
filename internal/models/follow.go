package models

import "time"

// Follow is a directed edge: FollowerID follows FollowedID.
// The pair is the primary key, so an edge exists at most once.
type Follow struct {
	FollowerID uint      `gorm:"column:user_following_id;primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"column:user_being_followed_id;primaryKey;autoIncrement:false;index" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed *User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
