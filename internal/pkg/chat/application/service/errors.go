package service

import "fmt"

// ErrStoreUnavailable wraps any Store failure caught at the service boundary.
// Callers log it; it never crashes a connection's event loop.
var ErrStoreUnavailable = fmt.Errorf("chat service: store unavailable")
