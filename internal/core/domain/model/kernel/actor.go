package kernel

import (
	"errors"
	"fmt"
	"strings"

	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

// ErrActorIsNotConstructed is returned when a zero-value Actor is used.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Role is the caller's role as resolved by the identity collaborator.
type Role int

const (
	// RoleUnknown catches uninitialized values.
	RoleUnknown Role = iota
	// RoleClient posts announcements and receives deliveries.
	RoleClient
	// RoleDeliverer fulfils deliveries.
	RoleDeliverer
	// RoleAdmin may act on any delivery.
	RoleAdmin
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:   "UNKNOWN",
		RoleClient:    "CLIENT",
		RoleDeliverer: "DELIVERER",
		RoleAdmin:     "ADMIN",
	}
}

// ParseRole accepts the role names case-insensitively.
func ParseRole(s string) (Role, error) {
	for role, name := range getRoleStrings() {
		if role != RoleUnknown && strings.EqualFold(name, strings.TrimSpace(s)) {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
}

// String returns the upper-case role name.
func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "UNKNOWN"
}

// Validate rejects RoleUnknown and out-of-range values.
func (r Role) Validate() error {
	if r <= RoleUnknown || r > RoleAdmin {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// Actor is the authenticated caller of an operation.
// The core never checks credentials: it trusts the id and role it is given.
type Actor struct {
	id    UUID
	role  Role
	guard guard.ConstructorGuard
}

// NewActor validates both the identifier and the role.
func NewActor(id UUID, role Role) (Actor, error) {
	if err := errors.Join(id.Validate(), role.Validate()); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role, guard: guard.NewConstructorGuard()}, nil
}

// ID returns the caller's user id.
func (a Actor) ID() UUID {
	return a.id
}

// Role returns the caller's role.
func (a Actor) Role() Role {
	return a.role
}

// IsAdmin reports whether the caller holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.role == RoleAdmin
}

// Is reports whether the caller is the user with the given id.
func (a Actor) Is(id UUID) bool {
	return a.id.IsEqual(id)
}

// IsOneOf reports whether the caller matches any of ids. Nil entries are skipped.
func (a Actor) IsOneOf(ids ...*UUID) bool {
	for _, id := range ids {
		if id != nil && a.Is(*id) {
			return true
		}
	}
	return false
}

// Validate returns ErrActorIsNotConstructed for the zero value.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}
