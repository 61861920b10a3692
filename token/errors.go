package token

import "errors"

// ErrTypeUnavailable is returned when a weakly-held type metadata object
// has been unloaded. Only reachable through the plugin-arena variant
// (arena.go), exercised under a build tag; the default Token never fails
// this way since Go types are never unloaded during a process's life.
var ErrTypeUnavailable = errors.New("token: type metadata unavailable (unloaded arena)")

// ErrUnsupportedParameterize is returned by Parameterize when given an
// argument count other than one (slice) or two (map).
var ErrUnsupportedParameterize = errors.New("token: unsupported parameterize arity")
