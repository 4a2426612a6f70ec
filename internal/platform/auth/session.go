package auth

import "context"

type contextKey string

const (
	operatorIDKey   contextKey = "operator_id"
	operatorNameKey contextKey = "operator_name"
	operatorRoleKey contextKey = "operator_roles"
)

// Session identifies the lab operator behind a request. It travels through
// the request context rather than any ambient global, so report and test
// definition writes can stamp the acting operator explicitly.
type Session struct {
	OperatorID   string
	OperatorName string
	Roles        []string
}

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, s Session) context.Context {
	ctx = context.WithValue(ctx, operatorIDKey, s.OperatorID)
	ctx = context.WithValue(ctx, operatorNameKey, s.OperatorName)
	return context.WithValue(ctx, operatorRoleKey, s.Roles)
}

// SessionFromContext extracts the operator session from the context.
// Missing values yield the zero session.
func SessionFromContext(ctx context.Context) Session {
	id, _ := ctx.Value(operatorIDKey).(string)
	name, _ := ctx.Value(operatorNameKey).(string)
	roles, _ := ctx.Value(operatorRoleKey).([]string)
	return Session{OperatorID: id, OperatorName: name, Roles: roles}
}

// RolesFromContext returns the operator's roles, if any.
func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(operatorRoleKey).([]string)
	return roles
}
