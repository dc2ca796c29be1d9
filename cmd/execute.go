package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/filter"
	"firestige.xyz/u2kit/internal/log"
	"firestige.xyz/u2kit/internal/unified2"
)

// errLimit ends a read loop once a command has seen enough entries.
var errLimit = errors.New("entry limit reached")

// forEach reads path and calls fn for every entry that passes the configured
// filters and then extra. It returns nil at the end of input. In follow mode
// it runs until ctx is done.
func forEach(ctx context.Context, c *config.Config, path string, fn func(*unified2.Entry) error, extra ...filter.Filter) error {
	filters, err := filter.FromConfig(c.Output.Filter)
	if err != nil {
		return err
	}
	filters = append(filters, extra...)

	r, err := openReader(c.Reader.Backend, path)
	if err != nil {
		return err
	}
	defer r.Close()

	var handlerErr error
	chain := filter.NewFilterChain(func(e *unified2.Entry) {
		if handlerErr == nil {
			handlerErr = fn(e)
		}
	}, filters)
	handle := func(e *unified2.Entry) error {
		chain.Filter(e)
		return handlerErr
	}

	err = readAll(ctx, c, r, handle)
	if errors.Is(err, errLimit) {
		return nil
	}
	return err
}

func readAll(ctx context.Context, c *config.Config, r EntryReader, handle func(*unified2.Entry) error) error {
	if c.Reader.Follow {
		err := r.Follow(ctx, c.Reader.PollInterval, handle)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	var e unified2.Entry
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.NextInto(&e)
		switch {
		case err == nil:
			if err := handle(&e); err != nil {
				return err
			}
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, core.ErrPartialRecord) && c.Reader.KeepGoing:
			log.GetLogger().WithError(err).Warn("dropping partial packet record")
		case errors.Is(err, core.ErrPartialRecord):
			return fmt.Errorf("%w (use --keep-going to continue)", err)
		default:
			return err
		}
	}
}
