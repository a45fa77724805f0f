package domain

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Category is the closed set of product families sold in the shop.
type Category string

const (
	CategoryChocolate   Category = "chocolate"
	CategoryCandy       Category = "candy"
	CategoryCake        Category = "cake"
	CategoryCookie      Category = "cookie"
	CategoryPastry      Category = "pastry"
	CategoryIceCream    Category = "ice cream"
	CategoryTraditional Category = "traditional"
	CategoryOther       Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryChocolate,
	CategoryCandy,
	CategoryCake,
	CategoryCookie,
	CategoryPastry,
	CategoryIceCream,
	CategoryTraditional,
	CategoryOther,
}

var (
	ErrSweetNotFound     = errors.New("sweet not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be a positive number")
	ErrInvalidID         = errors.New("invalid id format")
)

const (
	NameMinLen        = 2
	NameMaxLen        = 100
	DescriptionMaxLen = 500
)

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Sweet is a sellable product and its available stock.
type Sweet struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks every field constraint and returns a *ValidationError
// listing all violations, or nil.
func (s *Sweet) Validate() error {
	verr := &ValidationError{}

	if n := utf8.RuneCountInString(strings.TrimSpace(s.Name)); n < NameMinLen || n > NameMaxLen {
		verr.Add("name", "Name must be between 2 and 100 characters")
	}
	if !s.Category.Valid() {
		verr.Add("category", "Invalid category")
	}
	if s.Price < 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		verr.Add("price", "Price must be a positive number")
	}
	if s.Quantity < 0 {
		verr.Add("quantity", "Quantity must be a non-negative integer")
	}
	if utf8.RuneCountInString(s.Description) > DescriptionMaxLen {
		verr.Add("description", "Description cannot exceed 500 characters")
	}
	if !ValidImageRef(s.ImageURL) {
		verr.Add("imageUrl", "Invalid image URL or path")
	}

	return verr.OrNil()
}

// ValidImageRef accepts an empty reference, a root-relative path or an
// absolute http(s) URL.
func ValidImageRef(ref string) bool {
	if ref == "" {
		return true
	}
	return strings.HasPrefix(ref, "/") ||
		strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://")
}

// SweetPatch carries the subset of fields supplied to an update. Nil fields
// are left untouched.
type SweetPatch struct {
	Name        *string
	Category    *string
	Price       *float64
	Quantity    *int
	Description *string
	ImageURL    *string
}

// IsEmpty reports whether no field was supplied.
func (p SweetPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.Quantity == nil && p.Description == nil && p.ImageURL == nil
}

// Normalized returns a copy of p with surrounding whitespace removed from the
// supplied text fields.
func (p SweetPatch) Normalized() SweetPatch {
	p.Name = trimmed(p.Name)
	p.Category = trimmed(p.Category)
	p.Description = trimmed(p.Description)
	p.ImageURL = trimmed(p.ImageURL)
	return p
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// Apply copies the supplied fields onto s.
func (p SweetPatch) Apply(s *Sweet) {
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		s.Category = Category(*p.Category)
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	if p.Description != nil {
		s.Description = strings.TrimSpace(*p.Description)
	}
	if p.ImageURL != nil {
		s.ImageURL = strings.TrimSpace(*p.ImageURL)
	}
}
