package handler

import "github.com/pskiad17/FinancialOrganizer/internal/core/domain"

type loginRequest struct {
	Email    string `json:"email"    validate:"required" example:"ada@example.com"`
	Password string `json:"password" validate:"required" example:"analytical1"`
}

type registerRequest struct {
	FirstName       string `json:"firstName"       validate:"required,max=100"        example:"Ada"`
	LastName        string `json:"lastName"        validate:"required,max=100"        example:"Lovelace"`
	DateOfBirth     string `json:"dateOfBirth"     validate:"required,pastdate"       example:"1815-12-10"`
	Country         string `json:"country"         validate:"required,max=100"        example:"GB"`
	Email           string `json:"email"           validate:"required,email,max=254"  example:"ada@example.com"`
	Password        string `json:"password"        validate:"required,password"       example:"analytical1"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" example:"analytical1"`
}

// sessionResponse is returned by login, register and refresh.
type sessionResponse struct {
	Username string `json:"username" example:"Ada Lovelace"`
	Token    string `json:"token"`
}

type meResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role" example:"User"`
}

// ErrorResponse is the JSON envelope of every failed request.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

func newSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{Username: s.Username, Token: s.Token}
}
