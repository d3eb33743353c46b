package models

import "time"

type Product struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:64;index" json:"category"`
	Image       string    `gorm:"size:512" json:"image"`
	Price       int64     `gorm:"not null" json:"price"`
	IsGasBottle bool      `gorm:"default:false" json:"isGasBottle"`
	InStock     bool      `gorm:"default:true" json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}
