package models

import "workerlink/src/types"

// PushToken keeps at most one live device token per (user, type) pair,
// last write wins.
type PushToken struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	UserID   uint   `gorm:"uniqueIndex:idx_user_usertype" json:"user_id"`
	UserType string `gorm:"uniqueIndex:idx_user_usertype" json:"user_type"`
	Token    string `json:"token"`

	types.Timestamps
}
