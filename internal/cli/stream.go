package cli

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/harvest/internal/harvest"
	"github.com/temirov/harvest/internal/types"
)

// walkProducer adapts harvest.Walk to the channel form consumed by dispatchStream.
func walkProducer(options harvest.Options) func(context.Context, chan<- types.Record) error {
	return func(streamCtx context.Context, records chan<- types.Record) error {
		return harvest.Walk(streamCtx, options, func(record types.Record) error {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case records <- record:
				return nil
			}
		})
	}
}

// dispatchStream runs produce and consume concurrently, handing records over
// an unbuffered channel. The first failure of either side cancels the other.
func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- types.Record) error,
	consume func(types.Record) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	records := make(chan types.Record)

	group.Go(func() error {
		defer close(records)
		return produce(streamCtx, records)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case record, ok := <-records:
				if !ok {
					return nil
				}
				if err := consume(record); err != nil {
					return err
				}
			}
		}
	})

	return group.Wait()
}
