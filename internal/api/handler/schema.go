package handler

import (
	"github.com/kata/sweetshop/internal/api/response"
	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

// errorResponse documents the failure envelope for swagger.
type errorResponse = response.Envelope

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,user_role"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{User: toUserResponse(r.User), Token: r.Token}
}

// --- Sweets ---

type createSweetRequest struct {
	Name        string   `json:"name"        validate:"required,min=2,max=100"`
	Category    string   `json:"category"    validate:"required,sweet_category"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Quantity    *int     `json:"quantity"    validate:"required,gte=0"`
	Description string   `json:"description" validate:"max=500"`
	ImageURL    string   `json:"imageUrl"    validate:"omitempty,image_ref"`
}

func (r createSweetRequest) toInput() ports.SweetInput {
	return ports.SweetInput{
		Name:        r.Name,
		Category:    r.Category,
		Price:       *r.Price,
		Quantity:    *r.Quantity,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

// updateSweetRequest carries only the fields present in the JSON body.
type updateSweetRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=2,max=100"`
	Category    *string  `json:"category"    validate:"omitempty,sweet_category"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity"    validate:"omitempty,gte=0"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	ImageURL    *string  `json:"imageUrl"    validate:"omitempty,image_ref"`
}

func (r updateSweetRequest) toPatch() domain.SweetPatch {
	return domain.SweetPatch{
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

type stockRequest struct {
	Quantity int `json:"quantity"`
}
