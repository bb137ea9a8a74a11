package table

import "context"

// Sink persists built tables. Implementations decide the physical layout
// (files, database tables) from the column kinds.
type Sink interface {
	Name() string
	Write(ctx context.Context, t Table) error
}
