package utils

// ContextKey keys request-scoped values set by middleware.
type ContextKey string
