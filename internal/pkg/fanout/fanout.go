// Package fanout runs independent units of work concurrently and collects
// one outcome per unit, whatever happens to its siblings.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/nuniesmith/fks-main/internal/pkg/fanout"

var (
	// ErrTimeout is matched by outcomes whose unit exceeded the per-unit timeout.
	ErrTimeout = errors.New("unit timed out")

	// ErrPanic is matched by outcomes whose unit panicked.
	ErrPanic = errors.New("unit panicked")
)

// TimeoutError reports how long a unit was allowed to run.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout after %s", e.After)
}

// Is lets errors.Is(err, ErrTimeout) match.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Unit is one independent piece of work.
type Unit[T any] struct {
	ID  string
	Run func(ctx context.Context) (T, error)
}

// Outcome is the result of a single unit.
type Outcome[T any] struct {
	ID       string
	Value    T
	Err      error
	Duration time.Duration
}

// Run launches every unit at once and waits for all of them.
//
// A timeout <= 0 disables the per-unit deadline. Outcomes are returned in
// completion order; callers match them back by ID. A unit that times out or
// panics yields an outcome carrying ErrTimeout or ErrPanic and never affects
// the other units.
func Run[T any](ctx context.Context, units []Unit[T], timeout time.Duration) []Outcome[T] {
	if len(units) == 0 {
		return nil
	}

	var (
		g        errgroup.Group
		mu       sync.Mutex
		outcomes = make([]Outcome[T], 0, len(units))
	)

	for _, unit := range units {
		g.Go(func() error {
			outcome := runUnit(ctx, unit, timeout)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// Collect indexes outcomes by unit ID.
func Collect[T any](outcomes []Outcome[T]) map[string]Outcome[T] {
	byID := make(map[string]Outcome[T], len(outcomes))
	for _, outcome := range outcomes {
		byID[outcome.ID] = outcome
	}
	return byID
}

func runUnit[T any](ctx context.Context, unit Unit[T], timeout time.Duration) Outcome[T] {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fanout.unit",
		trace.WithAttributes(attribute.String("unit.id", unit.ID)))
	defer span.End()

	unitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		unitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resultCh := make(chan Outcome[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- Outcome[T]{ID: unit.ID, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
			}
		}()
		value, err := unit.Run(unitCtx)
		resultCh <- Outcome[T]{ID: unit.ID, Value: value, Err: err}
	}()

	var outcome Outcome[T]
	select {
	case outcome = <-resultCh:
		// A unit that honoured its context may return after the deadline fired.
		if outcome.Err != nil && timeout > 0 && ctx.Err() == nil &&
			errors.Is(unitCtx.Err(), context.DeadlineExceeded) {
			outcome.Err = &TimeoutError{After: timeout}
		}
	case <-unitCtx.Done():
		outcome = Outcome[T]{ID: unit.ID, Err: unitCtx.Err()}
		if ctx.Err() == nil && errors.Is(unitCtx.Err(), context.DeadlineExceeded) {
			outcome.Err = &TimeoutError{After: timeout}
		}
	}
	outcome.Duration = time.Since(start)

	if outcome.Err != nil {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
	}
	return outcome
}
