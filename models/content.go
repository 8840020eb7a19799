package models

import "time"

// Slide is a homepage banner.
type Slide struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Image     string    `json:"image" gorm:"not null"`
	TitleEn   string    `json:"title_en"`
	TitleAr   string    `json:"title_ar"`
	Link      string    `json:"link"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Job struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TitleEn       string    `json:"title_en" gorm:"not null"`
	TitleAr       string    `json:"title_ar" gorm:"not null"`
	DescriptionEn string    `json:"description_en"`
	DescriptionAr string    `json:"description_ar"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type JobApplication struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	JobID     uint      `json:"job_id" gorm:"index;not null"`
	Job       *Job      `json:"job,omitempty" gorm:"foreignKey:JobID"`
	Name      string    `json:"name" gorm:"not null"`
	Phone     string    `json:"phone" gorm:"not null"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	ResumeURL string    `json:"resume_url"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Addition{},
		&Product{},
		&Cart{},
		&CartItem{},
		&ShippingLocation{},
		&Address{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
		&Slide{},
		&Job{},
		&JobApplication{},
	}
}
