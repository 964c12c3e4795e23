package nlq

import "github.com/google/uuid"

// IDGenerator produces ask identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDv7IDs generates time-sortable UUIDv7 ask identifiers, so logs of
// successive asks sort by creation time.
//
// Thread-safety: UUIDv7IDs is stateless and safe for concurrent use.
type UUIDv7IDs struct{}

// NewID panics if UUID generation fails (should never happen in practice).
func (UUIDv7IDs) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
