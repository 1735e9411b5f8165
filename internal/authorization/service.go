package authorization

import "context"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleClerk Role = "clerk"
)

func (r Role) subject() string { return "role:" + string(r) }

type Service interface {
	// Authenticate maps a presented API key to a role. Without configured
	// key hashes every caller is admin.
	Authenticate(ctx context.Context, apiKey string) (Role, error)
	Authorize(ctx context.Context, role Role, object string, action string) error
}
