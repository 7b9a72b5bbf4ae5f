/*
Package identity defines the authenticated principal of the portal client.

An Identity is either fully present or absent: it is only ever built by FromFields, which
refuses partial data, so the rest of the client never sees half a session.
*/
package identity

import (
	"fmt"
	"strings"
)

// Role determines which screens are reachable. The zero value is not a valid identity role;
// as a gate requirement it means "any authenticated user".
type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	if r == RoleNone {
		return "any"
	}
	return string(r)
}

// ParseRole converts a wire or storage value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is the authenticated principal held by the session store.
type Identity struct {
	Name string `json:"name"`
	Role Role   `json:"role"`

	// Email is the identifier used at login. It is not durable and is empty after a reload.
	Email string `json:"email"`

	// Credential is the opaque bearer token. It is replayed on requests, never parsed.
	Credential string `json:"-"`
}

// FromFields rebuilds an Identity from its three durable fields.
// ok is false when any field is empty or the role is unknown.
func FromFields(token, role, name string) (id Identity, ok bool) {
	if token == "" || name == "" {
		return Identity{}, false
	}
	r, err := ParseRole(role)
	if err != nil {
		return Identity{}, false
	}
	return Identity{Name: name, Role: r, Credential: token}, true
}
