package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Dispatcher runs notifications in the background. Failures are logged
// and never reach the caller.
type Dispatcher struct {
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Go starts fn in its own goroutine. ctx loses its cancellation so a
// finished request does not abort the send.
func (d *Dispatcher) Go(ctx context.Context, name, reference string, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Interface("panic", r).Str("notification", name).Str("reference", reference).Msg("Notification panicked")
			}
		}()

		if err := fn(ctx); err != nil {
			d.logger.Error().Err(err).Str("notification", name).Str("reference", reference).Msg("Notification failed")
			return
		}
		d.logger.Debug().Str("notification", name).Str("reference", reference).Msg("Notification sent")
	}()
}

// Wait blocks until in-flight notifications finish. Used at shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
