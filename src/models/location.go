package models

import "time"

// WorkerLocation is the worker's latest reported position, overwritten
// on every update.
type WorkerLocation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	WorkerID  uint      `gorm:"uniqueIndex" json:"worker_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at"`
}
