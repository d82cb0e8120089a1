// internal/app/system/limits/limits.go
package limits

// Request size limits for the admin API.
const (
	// MaxJSONBody is the maximum size of a JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB
)
