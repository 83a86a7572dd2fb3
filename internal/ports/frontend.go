package ports

import (
	"context"
)

// Frontend is a user-facing surface that drives assistant sessions
type Frontend interface {
	// Run serves the user until they quit, input ends or ctx is cancelled
	Run(ctx context.Context) error
}
