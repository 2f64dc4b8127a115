package handlers

const (
	CSRFHeaderName = "X-CSRF-Token"

	maxRequestBodyBytes = 1 << 20
	maxBackupBodyBytes  = 64 << 20

	ErrInvalidRequestBody    = "Invalid request body"
	ErrUnauthorized          = "Unauthorized"
	ErrForbidden             = "Forbidden"
	ErrNotFound              = "Not found"
	ErrInvalidPeriod         = "Invalid period"
	ErrInternalServerError   = "Internal server error"
	ErrTooManyRequests       = "Too many requests, please try again later"
	ErrInvalidCSRFToken      = "Invalid CSRF token"
	ErrStreamingNotSupported = "Streaming not supported"
)
