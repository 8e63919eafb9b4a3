package models

import "workerlink/src/types"

type Worker struct {
	ID          uint     `gorm:"primarykey" json:"id"`
	Name        string   `json:"name,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	HomeAddress string   `json:"home_address,omitempty"`
	HomeLat     *float64 `json:"home_lat,omitempty"`
	HomeLng     *float64 `json:"home_lng,omitempty"`

	types.Timestamps
}

type Seeker struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `json:"name,omitempty"`
	Mobile string `json:"mobile,omitempty"`

	types.Timestamps
}
