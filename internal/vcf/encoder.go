// Package vcf encodes contacts as vCard 4.0 text.
package vcf

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/errors"
)

// DefaultWorkers is the number of cards built concurrently when Options.Workers
// is not set.
const DefaultWorkers = 4

// Options configures an Encoder. All fields are optional.
type Options struct {
	// Loader resolves thumbnail references. Without it, contacts whose
	// thumbnail has no inline data fail to encode.
	Loader ImageLoader

	// Notifier is told when an export is starting, if the caller asks for it.
	Notifier Notifier

	// Workers bounds how many cards are built at once.
	Workers int

	Logger *slog.Logger
}

// Encoder writes batches of contacts to a sink as concatenated vCards.
// An Encoder is safe for concurrent use.
type Encoder struct {
	loader   ImageLoader
	notifier Notifier
	workers  int
	logger   *slog.Logger
}

// NewEncoder creates an Encoder.
func NewEncoder(opts Options) *Encoder {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Encoder{
		loader:   opts.Loader,
		notifier: opts.Notifier,
		workers:  workers,
		logger:   logger,
	}
}

// Encode writes one vCard per contact to sink, in input order.
//
// A contact that cannot be encoded is counted as failed and left out; the rest
// of the batch continues. All cards are written in a single pass once every
// contact has been processed, so either the whole batch reaches the sink or
// nothing does. If the sink cannot be acquired, no contact is processed and
// both counters stay zero.
func (e *Encoder) Encode(ctx context.Context, contacts []*contact.Contact, sink Sink, notifyBeforeStart bool) Result {
	if sink == nil {
		return Result{Outcome: OutcomeFail, Err: errors.NewSinkUnavailable(nil)}
	}
	dest, err := sink.Acquire()
	if err != nil {
		e.logger.Error("export sink unavailable", "error", err)
		return Result{Outcome: OutcomeFail, Err: errors.NewSinkUnavailable(err)}
	}

	if notifyBeforeStart && e.notifier != nil {
		go e.notifier.NotifyExportStarting(len(contacts))
	}

	blocks, errs, err := e.buildAll(ctx, contacts)
	if err != nil {
		abort(e.logger, dest)
		e.logger.Info("export cancelled", "total", len(contacts))
		return Result{Outcome: OutcomeFail, Err: errors.NewCancelled("export")}
	}

	var res Result
	var out bytes.Buffer
	for i, buildErr := range errs {
		if buildErr == nil {
			res.Succeeded++
			out.Write(blocks[i])
			continue
		}

		res.Failed++
		id := ""
		if contacts[i] != nil {
			id = contacts[i].ID
		}
		e.logger.Warn("contact skipped", "index", i, "id", id, "error", buildErr)
		res.Failures = append(res.Failures, Failure{
			Index:     i,
			ContactID: id,
			Err:       errors.NewContactEncodingFailed(id, buildErr),
			Message:   buildErr.Error(),
		})
	}

	if res.Succeeded == 0 {
		abort(e.logger, dest)
		res.Outcome = OutcomeFail
		return res
	}

	if err := writeAll(dest, out.Bytes()); err != nil {
		abort(e.logger, dest)
		e.logger.Error("export write failed", "error", err)
		res.Outcome = OutcomeFail
		res.Err = errors.NewSerializationFailed(err)
		return res
	}
	if err := dest.Commit(); err != nil {
		e.logger.Error("export commit failed", "error", err)
		res.Outcome = OutcomeFail
		res.Err = errors.NewSerializationFailed(err)
		return res
	}

	res.Outcome = computeOutcome(res.Succeeded, res.Failed)
	e.logger.Debug("export finished",
		"outcome", res.Outcome, "succeeded", res.Succeeded, "failed", res.Failed)
	return res
}

// buildAll encodes every contact into an index-addressed slot. The returned
// error is non-nil only when ctx is done.
func (e *Encoder) buildAll(ctx context.Context, contacts []*contact.Contact) ([][]byte, []error, error) {
	blocks := make([][]byte, len(contacts))
	errs := make([]error, len(contacts))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, c := range contacts {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			blocks[i], errs[i] = e.encodeContact(ctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return blocks, errs, nil
}

func writeAll(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

func abort(logger *slog.Logger, dest Destination) {
	if err := dest.Abort(); err != nil {
		logger.Warn("failed to discard export output", "error", err)
	}
}
