package constants

// Gin context keys
const (
	ContextKeyRequestID = "RequestID"
)
