package models

import (
	"time"

	"shawarma-sheesh-api/pricing"
)

type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	NameEn    string    `json:"name_en" gorm:"not null"`
	NameAr    string    `json:"name_ar" gorm:"not null"`
	Image     string    `json:"image"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Addition is an optional extra (sauce, cheese, ...) that can be attached to products.
// Its price is added to the unit price after any product discount.
type Addition struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	NameEn    string    `json:"name_en" gorm:"not null"`
	NameAr    string    `json:"name_ar" gorm:"not null"`
	Price     float64   `json:"price" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	NameEn            string         `json:"name_en" gorm:"not null"`
	NameAr            string         `json:"name_ar" gorm:"not null"`
	DescriptionEn     string         `json:"description_en"`
	DescriptionAr     string         `json:"description_ar"`
	CategoryID        uint           `json:"category_id" gorm:"index;not null"`
	Category          *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	BasePrice         float64        `json:"base_price" gorm:"not null"`
	HasTypeChoices    bool           `json:"has_type_choices"`
	HasProteinChoices bool           `json:"has_protein_choices"`
	Prices            pricing.Matrix `json:"prices,omitempty" gorm:"serializer:json;type:text"`
	Discount          float64        `json:"discount" gorm:"default:0"`
	IsSpicy           bool           `json:"is_spicy"`
	InStock           bool           `json:"in_stock"`
	Additions         []Addition     `json:"additions" gorm:"many2many:product_additions"`
	Image             string         `json:"image"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Variant exposes the fields pricing needs.
func (p *Product) Variant() pricing.Variant {
	return pricing.Variant{
		BasePrice:         p.BasePrice,
		HasTypeChoices:    p.HasTypeChoices,
		HasProteinChoices: p.HasProteinChoices,
		Prices:            p.Prices,
		Discount:          p.Discount,
	}
}

// ValidatePrices enforces the price matrix invariant for the enabled choices.
func (p *Product) ValidatePrices() error {
	return pricing.Validate(p.Variant())
}
