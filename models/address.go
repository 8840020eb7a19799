package models

import "time"

// ShippingLocation is a delivery zone with a flat delivery fee.
type ShippingLocation struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	NameEn       string    `json:"name_en" gorm:"not null"`
	NameAr       string    `json:"name_ar" gorm:"not null"`
	DeliveryCost float64   `json:"delivery_cost" gorm:"not null"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Address struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	UserID     uint              `json:"user_id" gorm:"index;not null"`
	LocationID uint              `json:"location_id" gorm:"not null"`
	Location   *ShippingLocation `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	Street     string            `json:"street" gorm:"not null"`
	Building   string            `json:"building"`
	Details    string            `json:"details"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
