package catalog

import (
	"github.com/MarcoPoloResearchLab/ecofinds/internal/users"
)

// ProductID is the local surrogate key of a product.
type ProductID uint

// Product is a listing owned by exactly one user.
type Product struct {
	ID          ProductID    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      users.UserID `gorm:"column:user_id;not null;index"`
	Owner       users.User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
	Title       string       `gorm:"column:title;size:255;not null"`
	Description string       `gorm:"column:description;type:text;not null;default:''"`
	Price       float64      `gorm:"column:price;type:decimal(12,2);not null"`
	Category    string       `gorm:"column:category;size:128;not null;default:'';index"`
	Image       string       `gorm:"column:image;size:1024;not null;default:''"`
}

// TableName provides the explicit table binding for GORM.
func (Product) TableName() string {
	return "products"
}

// CreateProductInput carries the client payload for a new product.
// Price holds the raw decoded JSON value so numeric strings are accepted.
type CreateProductInput struct {
	Title       string
	Description string
	Price       any
	Category    string
	Image       string
}

// ListFilter narrows a product listing. Empty fields are ignored.
type ListFilter struct {
	Query    string
	Category string
}

// Listing is a product annotated with its seller's display name.
type Listing struct {
	ID          ProductID    `json:"id"`
	UserID      users.UserID `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	Category    string       `json:"category"`
	Image       string       `json:"image"`
	SellerName  string       `json:"seller_name"`
}
