package services

import "errors"

// Common service errors
var (
	ErrNotFound          = errors.New("contract not found")
	ErrClientNotVisible  = errors.New("client not found or access denied")
	ErrLawyerNotFound    = errors.New("assigned lawyer not found")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrEmailDisabled     = errors.New("email delivery is not configured")
)
