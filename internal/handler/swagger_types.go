package handler

import "billrecon/internal/domain"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// ExtractRequest represents the bill extraction request body.
type ExtractRequest struct {
	Document string `json:"document" binding:"required" example:"https://cdn.example.com/bills/discharge-summary.pdf"`
}

// ReconcileRequest represents the reconcile-only request body.
type ReconcileRequest struct {
	Pages *[]domain.Page `json:"pagewise_line_items" binding:"required"`
}

// --- Response Types ---

// InfoResponse represents the service info response.
type InfoResponse struct {
	Message  string `json:"message" example:"Bill Extraction API"`
	Version  string `json:"version" example:"1.0.0"`
	Endpoint string `json:"endpoint" example:"/extract-bill-data"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp string `json:"timestamp,omitempty" example:"2026-01-15T10:30:00Z"`
	Error     string `json:"error,omitempty" example:"audit database not reachable"`
}

// --- Generic Response Wrappers ---

// ExtractionResponse wraps a successful extraction.
type ExtractionResponse struct {
	IsSuccess  bool                    `json:"is_success" example:"true"`
	TokenUsage domain.TokenUsage       `json:"token_usage"`
	Data       domain.ExtractionResult `json:"data"`
}

// Response wraps a successful response with data.
type Response struct {
	IsSuccess bool        `json:"is_success" example:"true"`
	Data      interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	IsSuccess bool      `json:"is_success" example:"false"`
	Error     *APIError `json:"error"`
}
