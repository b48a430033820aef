// Package types provides common type definitions shared across the service.
package types

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// StoreBackend names the blob store implementation backing the leaderboard
type StoreBackend string

const (
	// BackendRedis stores leaderboard blobs in Redis
	BackendRedis StoreBackend = "redis"
	// BackendPostgres stores leaderboard blobs in a Postgres key/value table
	BackendPostgres StoreBackend = "postgres"
	// BackendNone runs without a store; the leaderboard degrades to empty
	BackendNone StoreBackend = "none"
)

// ParseStoreBackend parses a backend name, defaulting to redis
func ParseStoreBackend(s string) StoreBackend {
	switch StoreBackend(s) {
	case BackendPostgres:
		return BackendPostgres
	case BackendNone:
		return BackendNone
	default:
		return BackendRedis
	}
}
