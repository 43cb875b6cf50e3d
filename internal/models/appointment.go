package models

import "time"

type Appointment struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Client  string `gorm:"size:100;not null" json:"client"`
	Service string `gorm:"size:100;not null" json:"service"`

	Time time.Time `gorm:"column:scheduled_at;not null;index" json:"time"`

	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	OwnerUserID *uint `gorm:"index" json:"owner_user_id"`
	Owner       *User `gorm:"foreignKey:OwnerUserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
