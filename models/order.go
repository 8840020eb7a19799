package models

import "time"

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusConfirmed  OrderStatus = "Confirmed"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCliQ PaymentMethod = "cliq"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is stored inline on the order row (payment_method, payment_status, ...).
type Payment struct {
	Method        PaymentMethod `json:"method" gorm:"not null"`
	Status        PaymentStatus `json:"status" gorm:"not null;default:'pending'"`
	TransactionID string        `json:"transaction_id"`
	SessionID     string        `json:"session_id"`
}

type Order struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	UserID         uint                 `json:"user_id" gorm:"index;not null"`
	User           *User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	SequenceNumber int                  `json:"sequence_number"`
	OrderDay       string               `json:"order_day" gorm:"index"` // day the sequence number belongs to
	Status         OrderStatus          `json:"status" gorm:"not null;default:'Processing'"`
	DeliveryType   DeliveryType         `json:"delivery_type" gorm:"not null"`
	AddressID      *uint                `json:"address_id"`
	Address        *Address             `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	AddressLine    string               `json:"address_line"` // snapshot, survives address deletion
	Payment        Payment              `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`
	Subtotal       float64              `json:"subtotal"`
	DeliveryCost   float64              `json:"delivery_cost"`
	TotalPrice     float64              `json:"total_price"`
	Notes          string               `json:"notes"`
	Items          []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory  []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// OrderAddition is the addition as it was priced when the order was placed.
type OrderAddition struct {
	AdditionID uint    `json:"addition_id"`
	NameEn     string  `json:"name_en"`
	NameAr     string  `json:"name_ar"`
	Price      float64 `json:"price"`
}

type OrderItem struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	OrderID         uint            `json:"order_id" gorm:"index;not null"`
	ProductID       uint            `json:"product_id" gorm:"not null"`
	Product         *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	NameEn          string          `json:"name_en"` // snapshot
	NameAr          string          `json:"name_ar"` // snapshot
	Quantity        int             `json:"quantity" gorm:"not null"`
	IsSpicy         bool            `json:"is_spicy"`
	Notes           string          `json:"notes"`
	SelectedProtein string          `json:"selected_protein"`
	SelectedType    string          `json:"selected_type"`
	Additions       []OrderAddition `json:"additions" gorm:"serializer:json;type:text"`
	PriceAtPurchase float64         `json:"price_at_purchase" gorm:"not null"` // discounted unit price incl. additions
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"index;not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
