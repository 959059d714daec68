package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// WithCaller adds the authenticated user's ID and role to the request
// context.
func WithCaller(r *http.Request, userID, role string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	return r.WithContext(ctx)
}

// GetUserID retrieves the user ID from context, empty if not set.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetRole retrieves the caller role from context, empty if not set.
func GetRole(r *http.Request) string {
	role, _ := r.Context().Value(roleKey).(string)
	return role
}
