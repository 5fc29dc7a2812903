package entities

import "strings"

// Address is an opaque, host-authenticated identity. The engine never
// interprets its contents beyond the zero check.
type Address string

func (a Address) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

func (a Address) String() string {
	return string(a)
}
