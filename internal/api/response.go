// Package api is the request boundary between the terminal UI and the
// repositories. Every call validates its input first and answers with a
// Response envelope; nothing panics or returns a raw error outward.
package api

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies a failed response.
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
	CodeNetwork    ErrorCode = "NETWORK_ERROR"
	CodeImport     ErrorCode = "IMPORT_ERROR"
)

var errorCodes = map[ErrorCode]bool{
	CodeValidation: true,
	CodeNotFound:   true,
	CodeInternal:   true,
	CodeNetwork:    true,
	CodeImport:     true,
}

// ParseErrorCode accepts only the known codes.
func ParseErrorCode(s string) (ErrorCode, error) {
	code := ErrorCode(s)
	if !errorCodes[code] {
		return "", fmt.Errorf("unknown error code %q", s)
	}
	return code, nil
}

// UnmarshalJSON rejects unknown codes.
func (c *ErrorCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	code, err := ParseErrorCode(s)
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// Response is either {success: true, data} or
// {success: false, error, errorCode}.
type Response[T any] struct {
	Success   bool      `json:"success"`
	Data      T         `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorCode ErrorCode `json:"errorCode,omitempty"`
}

// OK wraps data in a successful response.
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

// Fail builds a failed response.
func Fail[T any](code ErrorCode, msg string) Response[T] {
	return Response[T]{Error: msg, ErrorCode: code}
}
