package handler

import "github.com/healthtrack/healthtrack/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// dataResponse wraps every successful data payload as {"data": ...}.
type dataResponse struct {
	Data any `json:"data"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Age      *int   `json:"age,omitempty" validate:"omitempty,gt=0,lt=150"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

// --- Medications ---

type medicationRequest struct {
	Name         string `json:"name"      validate:"required"`
	Dosage       string `json:"dosage"    validate:"required"`
	Frequency    string `json:"frequency" validate:"required"`
	Instructions string `json:"instructions,omitempty"`
}

// --- Metrics ---

type metricRequest struct {
	Type      string   `json:"type" validate:"required,oneof=heart-rate blood-pressure weight temperature glucose"`
	Value     *float64 `json:"value,omitempty" validate:"omitempty,gt=0"`
	Systolic  *int     `json:"systolic,omitempty" validate:"omitempty,gt=0"`
	Diastolic *int     `json:"diastolic,omitempty" validate:"omitempty,gt=0"`
	Unit      string   `json:"unit,omitempty"`
}
