package common

type contextKey string

const (
	SessionIDContextKey contextKey = "session_id"
	LatencyContextKey   contextKey = "__execution_time"
)
