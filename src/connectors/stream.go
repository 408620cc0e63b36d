package connectors

import (
	"context"
	"fmt"

	"github.com/destel/rill"
	"github.com/sandrolain/table-bridge/src/record"
)

// Emit sends rec on out. It returns false when ctx is done first.
func Emit(ctx context.Context, out chan<- rill.Try[record.Record], rec record.Record) bool {
	select {
	case out <- rill.Wrap(rec, nil):
		return true
	case <-ctx.Done():
		return false
	}
}

// EmitError sends err, wrapped in ErrSourceRead, as the terminal stream item.
func EmitError(ctx context.Context, out chan<- rill.Try[record.Record], err error) {
	select {
	case out <- rill.Wrap(record.Record{}, fmt.Errorf("%w: %w", ErrSourceRead, err)):
	case <-ctx.Done():
	}
}
