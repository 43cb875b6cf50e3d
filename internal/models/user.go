package models

import "time"

type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Username   string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Credential string `gorm:"size:255;not null" json:"-"`
	IsAdmin    bool   `gorm:"not null;default:false" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
}
