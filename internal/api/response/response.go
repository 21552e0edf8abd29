package response

import (
	"encoding/json"
	"net/http"
	"strings"
)

// SuccessResponse represents a successful API response with data.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    int    `json:"code"`
}

// MethodNotAllowedResponse is an ErrorResponse plus a discovery hint for the
// endpoint(s) the caller probably wanted.
type MethodNotAllowedResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Code    int      `json:"code"`
	Allowed []string `json:"allowed"`
	Hint    string   `json:"hint"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data})
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Success: false,
		Error:   err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, err error) {
	Error(w, http.StatusUnauthorized, err)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// MethodNotAllowed writes a 405 response carrying the allowed methods and a
// hint pointing at the endpoint(s) the caller likely meant to use.
func MethodNotAllowed(w http.ResponseWriter, allowed []string, hint string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	JSON(w, http.StatusMethodNotAllowed, MethodNotAllowedResponse{
		Success: false,
		Error:   http.StatusText(http.StatusMethodNotAllowed),
		Code:    http.StatusMethodNotAllowed,
		Allowed: allowed,
		Hint:    hint,
	})
}

// InternalError writes a 500 response with a generic message. The underlying
// error is for the server log, never the client.
func InternalError(w http.ResponseWriter) {
	JSON(w, http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   "An unexpected error occurred",
		Code:    http.StatusInternalServerError,
	})
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter) {
	JSON(w, http.StatusTooManyRequests, ErrorResponse{
		Success: false,
		Error:   "Too many requests, slow down",
		Code:    http.StatusTooManyRequests,
	})
}
