package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedEntityKind = errors.New("supplied entity must be host or group")

type Kind int

const (
	KindUnknown Kind = iota
	KindHost
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "host":
		return KindHost, nil
	case "group":
		return KindGroup, nil
	default:
		return KindUnknown, fmt.Errorf("%w, got %q instead", ErrUnsupportedEntityKind, s)
	}
}

// Entity is a host or a group as named in the inventory.
type Entity struct {
	Kind Kind
	Name string
}

func NewHost(name string) Entity {
	return Entity{Kind: KindHost, Name: name}
}

func NewGroup(name string) Entity {
	return Entity{Kind: KindGroup, Name: name}
}

func (e Entity) String() string {
	return e.Name
}
