package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/models"
)

// storeGuard runs store calls through a circuit breaker and normalises every
// I/O failure into models.ErrUnavailable. Business outcomes (not found,
// conflict, invalid input) pass through untouched and never trip the breaker.
type storeGuard struct {
	breaker *gobreaker.CircuitBreaker
}

func newStoreGuard(name string) *storeGuard {
	return &storeGuard{
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
			},
			IsSuccessful: func(err error) bool {
				return err == nil || isBusinessError(err)
			},
		}),
	}
}

// write runs fn once. Writes are never retried.
func (g *storeGuard) write(fn func() error) error {
	return g.run(fn)
}

// read runs fn and retries it once when the store was unavailable.
func (g *storeGuard) read(fn func() error) error {
	err := g.run(fn)
	if err != nil && errors.Is(err, models.ErrUnavailable) && !errors.Is(err, gobreaker.ErrOpenState) {
		logging.Logger.Warnf("Event ID: STORE_READ_RETRY, Description: retrying read after store error: %v", err)
		err = g.run(fn)
	}
	return err
}

func (g *storeGuard) run(fn func() error) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return unavailable(err)
}

func isBusinessError(err error) bool {
	return errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrConflict) ||
		errors.Is(err, models.ErrInvalidInput) ||
		errors.Is(err, models.ErrForbidden)
}

// unavailable wraps raw store errors in models.ErrUnavailable, keeping the cause in the chain.
func unavailable(err error) error {
	if err == nil || isBusinessError(err) || errors.Is(err, models.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrUnavailable, err)
}
