package utils

import (
	"fmt"
	"strconv"
	"time"
)

// ===================================================================
// PARAMETER HELPERS
// ===================================================================

// GetIntOrDefault returns the parsed value if valid, otherwise defaultValue.
func GetIntOrDefault(valueStr string, defaultValue int) int {
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// ParseTimeParam parses a query-string instant. RFC3339 and Unix millisecond
// forms are accepted; an empty value yields the fallback.
func ParseTimeParam(valueStr string, fallback time.Time) (time.Time, error) {
	if valueStr == "" {
		return fallback, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, valueStr); err == nil {
			return parsed, nil
		}
	}
	if millis, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return time.UnixMilli(millis).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable instant %q", valueStr)
}

// ===================================================================
// VALIDATION HELPERS
// ===================================================================

// ValidateRequired checks that required fields are not empty.
func ValidateRequired(fields map[string]string) error {
	for fieldName, value := range fields {
		if value == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}
	return nil
}

// ===================================================================
// RESPONSE HELPERS
// ===================================================================

// ListResponse is the envelope of every list endpoint. On failure Data is an
// empty slice, never null, so front-end code can always range over it.
type ListResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// SuccessList creates a successful list envelope.
func SuccessList(data interface{}, count int) ListResponse {
	return ListResponse{
		Success: true,
		Count:   count,
		Data:    data,
	}
}

// ErrorList creates a failed list envelope with an empty data array.
func ErrorList(message string) ListResponse {
	return ListResponse{
		Success: false,
		Count:   0,
		Data:    []interface{}{},
		Message: message,
	}
}

// MessageResponse is the envelope for non-list results.
type MessageResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessMessage creates a successful message envelope.
func SuccessMessage(message string, data interface{}) MessageResponse {
	return MessageResponse{Success: true, Message: message, Data: data}
}

// ErrorMessage creates a failed message envelope.
func ErrorMessage(message string) MessageResponse {
	return MessageResponse{Success: false, Message: message}
}
