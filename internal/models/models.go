package models

import (
	"time"
)

// DefaultProductPhoto is the placeholder shown for products without an
// uploaded image. It is never deleted from storage.
const DefaultProductPhoto = "blank.png"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;unique;not null" json:"name"`
	IsActive  *bool     `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `gorm:"not null"                 json:"description"`
	Price       float64   `gorm:"not null;default:0"       json:"price"`
	Quantity    int       `gorm:"default:0"                json:"quantity"`
	Sold        int       `gorm:"default:0"                json:"sold"`
	Photo       string    `gorm:"default:blank.png"        json:"photo"`
	Shipping    *bool     `json:"shipping"`
	CategoryID  *uint     `gorm:"index"                    json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
