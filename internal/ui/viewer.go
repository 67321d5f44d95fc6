package ui

import "context"

// Viewer browses prepared fixtures interactively
type Viewer interface {
	// Browse opens the given version, or the newest one when v is empty
	Browse(ctx context.Context, v string) error
}
