package models

import (
	"time"
)

type Product struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Price         float64   `json:"price" db:"price"`
	Category      string    `json:"category" db:"category"`
	Description   string    `json:"description" db:"description"`
	Images        []string  `json:"images" db:"images"`
	Stock         int       `json:"stock" db:"stock"`
	OriginalPrice *float64  `json:"originalPrice" db:"original_price"`
	Discount      *int      `json:"discount" db:"discount"`
	Assured       *bool     `json:"assured" db:"assured"`
	Brand         *string   `json:"brand" db:"brand"`
	Sizes         []string  `json:"sizes" db:"sizes"`
	Rating        float64   `json:"rating" db:"rating"`
	ReviewCount   int       `json:"reviewCount" db:"review_count"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductPatch is a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name          *string   `json:"name"`
	Price         *float64  `json:"price"`
	Category      *string   `json:"category"`
	Description   *string   `json:"description"`
	Images        *[]string `json:"images"`
	Stock         *int      `json:"stock"`
	OriginalPrice *float64  `json:"originalPrice"`
	Discount      *int      `json:"discount"`
	Assured       *bool     `json:"assured"`
	Brand         *string   `json:"brand"`
	Sizes         *[]string `json:"sizes"`
	Rating        *float64  `json:"rating"`
	ReviewCount   *int      `json:"reviewCount"`
}

// ApplyPatch merges the non-nil fields of patch into p.
func ApplyPatch(p *Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Images != nil {
		p.Images = append([]string(nil), (*patch.Images)...)
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.OriginalPrice != nil {
		value := *patch.OriginalPrice
		p.OriginalPrice = &value
	}
	if patch.Discount != nil {
		value := *patch.Discount
		p.Discount = &value
	}
	if patch.Assured != nil {
		value := *patch.Assured
		p.Assured = &value
	}
	if patch.Brand != nil {
		value := *patch.Brand
		p.Brand = &value
	}
	if patch.Sizes != nil {
		p.Sizes = append([]string(nil), (*patch.Sizes)...)
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.ReviewCount != nil {
		p.ReviewCount = *patch.ReviewCount
	}
}
