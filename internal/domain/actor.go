package domain

import (
	"fmt"
	"strings"
)

// Actor identifies who requests a state change. The concrete types form a
// closed set: AdminActor, UserActor, WhatsAppActor.
type Actor interface {
	// Tag serializes the actor into its wire form, e.g. "user:42"
	Tag() string
	isActor()
}

// AdminActor may act on any booking
type AdminActor struct {
	ID string
}

// UserActor is an authenticated owner of bookings
type UserActor struct {
	ID string
}

// WhatsAppActor is a contact identified by a normalized phone
type WhatsAppActor struct {
	Phone string
}

func (a AdminActor) Tag() string    { return "admin:" + a.ID }
func (a UserActor) Tag() string     { return "user:" + a.ID }
func (a WhatsAppActor) Tag() string { return "wa:" + a.Phone }

func (AdminActor) isActor()    {}
func (UserActor) isActor()     {}
func (WhatsAppActor) isActor() {}

var ErrInvalidActor = fmt.Errorf("%w: invalid actor tag", ErrValidation)

// ParseActor is the only way to build an Actor from its wire form.
// Unknown prefixes and empty identities are rejected.
func ParseActor(raw string) (Actor, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidActor, raw)
	}
	id = strings.TrimSpace(id)

	switch kind {
	case "admin":
		if id == "" {
			return nil, fmt.Errorf("%w: empty admin id", ErrInvalidActor)
		}
		return AdminActor{ID: id}, nil
	case "user":
		if id == "" {
			return nil, fmt.Errorf("%w: empty user id", ErrInvalidActor)
		}
		return UserActor{ID: id}, nil
	case "wa":
		phone := NormalizePhone(id)
		if phone == "" {
			return nil, fmt.Errorf("%w: empty phone", ErrInvalidActor)
		}
		return WhatsAppActor{Phone: phone}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidActor, kind)
	}
}
