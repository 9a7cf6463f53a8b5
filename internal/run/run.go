package run

import (
	"context"
	"errors"
	"time"

	"github.com/hanpama/gqlmodel/internal/config"
	"github.com/hanpama/gqlmodel/internal/document"
	"github.com/hanpama/gqlmodel/internal/engine"
	"github.com/hanpama/gqlmodel/internal/eventbus"
	"github.com/hanpama/gqlmodel/internal/events"
	"github.com/hanpama/gqlmodel/internal/runid"
	"github.com/hanpama/gqlmodel/internal/schema"
	"golang.org/x/sync/errgroup"
)

// Outcome is what one unit's run produced. Exactly one of Result and Err is
// set; a failed run keeps none of its partial output.
type Outcome struct {
	Unit     string
	RunID    string
	Result   *engine.Result
	Err      error
	Duration time.Duration
}

// Units generates every unit in its own run. Runs proceed concurrently, at
// most conf.Parallelism at a time, and a failing unit does not stop the
// others. Outcomes are returned in unit order. The returned error is only
// set when ctx is cancelled.
func Units(ctx context.Context, s *schema.Schema, conf config.Generator, units []*document.Unit) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(units))
	g, gctx := errgroup.WithContext(ctx)
	limit := conf.Parallelism
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, unit := range units {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = &Outcome{Unit: unit.Name, Err: err}
				return nil
			}
			outcomes[i] = One(gctx, s, conf, unit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		for i, unit := range units {
			if outcomes[i] == nil {
				outcomes[i] = &Outcome{Unit: unit.Name, Err: err}
			}
		}
		return outcomes, err
	}
	return outcomes, nil
}

// One generates a single unit, publishing its lifecycle on the event bus.
func One(ctx context.Context, s *schema.Schema, conf config.Generator, unit *document.Unit) *Outcome {
	ctx, id := runid.NewContext(ctx)
	eventbus.Publish(ctx, events.RunStart{
		Unit:       unit.Name,
		Operations: len(unit.Operations),
		Fragments:  len(unit.Fragments),
	})

	start := time.Now()
	gen := engine.New(s, conf, engine.WithWarningHandler(func(message string) {
		eventbus.Publish(ctx, events.Warning{Unit: unit.Name, Message: message})
	}))
	res, err := gen.Generate(unit)
	out := &Outcome{Unit: unit.Name, RunID: id, Duration: time.Since(start)}
	if err != nil {
		out.Err = err
	} else {
		out.Result = res
	}

	finish := events.RunFinish{Unit: unit.Name, Err: err, Duration: out.Duration}
	if res != nil {
		finish.Classes = len(res.Classes)
		finish.Warnings = len(res.Warnings)
	}
	eventbus.Publish(ctx, finish)
	return out
}

// Results returns the results of the successful outcomes, in order.
func Results(outcomes []*Outcome) []*engine.Result {
	var out []*engine.Result
	for _, o := range outcomes {
		if o != nil && o.Result != nil {
			out = append(out, o.Result)
		}
	}
	return out
}

// Err joins the errors of failed outcomes, or returns nil.
func Err(outcomes []*Outcome) error {
	var errs []error
	for _, o := range outcomes {
		if o != nil && o.Err != nil {
			errs = append(errs, &UnitError{Unit: o.Unit, Err: o.Err})
		}
	}
	return errors.Join(errs...)
}

// UnitError is a failure attributed to one unit.
type UnitError struct {
	Unit string
	Err  error
}

func (e *UnitError) Error() string { return e.Unit + ": " + e.Err.Error() }

func (e *UnitError) Unwrap() error { return e.Err }
