package domain

import "fmt"

// Role is the closed set of caller roles. Raw identity strings are resolved to
// a Role exactly once at the authentication boundary; business logic only ever
// sees the typed value.
type Role string

const (
	RoleClient     Role = "client"
	RoleBookkeeper Role = "bookkeeper"
	RoleTaxAgent   Role = "tax_agent"
	RoleAdmin      Role = "admin"
)

// ParseRole maps a raw role string from an auth token to a Role.
// Legacy "staff" and "accountant" identities map to bookkeeper.
func ParseRole(raw string) (Role, error) {
	switch raw {
	case "client":
		return RoleClient, nil
	case "bookkeeper", "staff", "accountant":
		return RoleBookkeeper, nil
	case "tax_agent":
		return RoleTaxAgent, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Actor identifies an authenticated caller for audit and permission purposes.
type Actor struct {
	UserID string
	Role   Role
}
