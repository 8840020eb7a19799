package models

import "time"

// Cart is created lazily on the first add and holds one user's pending lines.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	CartID          uint       `json:"cart_id" gorm:"index;not null"`
	ProductID       uint       `json:"product_id" gorm:"not null"`
	Product         Product    `json:"product" gorm:"foreignKey:ProductID"`
	Quantity        int        `json:"quantity" gorm:"not null"`
	IsSpicy         bool       `json:"is_spicy"`
	Additions       []Addition `json:"additions" gorm:"many2many:cart_item_additions"`
	Notes           string     `json:"notes"`
	SelectedProtein string     `json:"selected_protein"`
	SelectedType    string     `json:"selected_type"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AdditionPrices returns the prices of the given additions in order.
func AdditionPrices(additions []Addition) []float64 {
	prices := make([]float64, len(additions))
	for i, a := range additions {
		prices[i] = a.Price
	}
	return prices
}
