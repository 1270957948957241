// Package core holds the error taxonomy shared by the voice pipeline and
// its collaborators.
package core

import (
	"fmt"
	"strings"
)

// Error is a classified pipeline error carrying a user-facing message.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrConfiguration is raised before any hardware or network side effect
	// (for example a missing API key).
	ErrConfiguration ErrorType = "configuration_error"
	// ErrPermission covers microphone/device access failures.
	ErrPermission ErrorType = "permission_error"
	// ErrAuthentication covers credential rejection by the remote service.
	ErrAuthentication ErrorType = "authentication_error"
	// ErrForbidden covers 403-class rejections.
	ErrForbidden ErrorType = "forbidden_error"
	// ErrQuota covers quota exhaustion.
	ErrQuota ErrorType = "quota_error"
	// ErrDevice covers audio hardware failures other than permission.
	ErrDevice ErrorType = "device_error"
	// ErrAPI is the generic remote-service error.
	ErrAPI ErrorType = "api_error"
)

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string) *Error {
	return &Error{Type: ErrConfiguration, Message: message}
}

// NewPermissionError creates a permission error.
func NewPermissionError(message string) *Error {
	return &Error{Type: ErrPermission, Message: message}
}

// NewDeviceError creates a device error.
func NewDeviceError(message string) *Error {
	return &Error{Type: ErrDevice, Message: message}
}

// NewAPIError creates a generic remote-service error.
func NewAPIError(message string) *Error {
	return &Error{Type: ErrAPI, Message: message}
}

// User-facing messages for remote-service failures. Exactly one of these is
// surfaced per failure event.
const (
	MsgMissingAPIKey = "API key not found. Set GEMINI_API_KEY before connecting."
	MsgForbidden     = "Access denied (403). Check the API key and that the Gemini API is enabled for the project."
	MsgUnauthorized  = "Unauthorized (401). The API key is invalid."
	MsgQuota         = "Quota exceeded. Try again later."
	MsgGenericRemote = "Error in the connection with the assistant."
)

// ClassifyRemote maps a remote-session failure onto a typed error with a
// distinct user-facing message. Classification inspects the error text, which
// is all the realtime endpoint exposes on the websocket handshake.
func ClassifyRemote(err error) *Error {
	if err == nil {
		return nil
	}
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "403") || strings.Contains(text, "permission denied") || strings.Contains(text, "forbidden"):
		return &Error{Type: ErrForbidden, Message: MsgForbidden, Code: "403"}
	case strings.Contains(text, "401") || strings.Contains(text, "unauthenticated") || strings.Contains(text, "unauthorized"):
		return &Error{Type: ErrAuthentication, Message: MsgUnauthorized, Code: "401"}
	case strings.Contains(text, "quota") || strings.Contains(text, "resource exhausted") || strings.Contains(text, "429"):
		return &Error{Type: ErrQuota, Message: MsgQuota, Code: "429"}
	default:
		return &Error{Type: ErrAPI, Message: MsgGenericRemote}
	}
}
