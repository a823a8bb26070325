package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/harvest/internal/types"
)

func TestDispatchStreamDeliversRecordsInOrder(t *testing.T) {
	produced := []types.RecordKind{types.RecordDirectoryOpen, types.RecordFileUnit, types.RecordDirectoryClose}
	producer := func(ctx context.Context, records chan<- types.Record) error {
		for _, kind := range produced {
			records <- types.Record{Kind: kind}
		}
		return nil
	}
	var consumed []types.RecordKind
	consumer := func(record types.Record) error {
		consumed = append(consumed, record.Kind)
		return nil
	}

	require.NoError(t, dispatchStream(context.Background(), producer, consumer))
	assert.Equal(t, produced, consumed)
}

func TestDispatchStreamReturnsConsumerFailure(t *testing.T) {
	failure := errors.New("render failed")
	producer := func(ctx context.Context, records chan<- types.Record) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case records <- types.Record{Kind: types.RecordFileUnit}:
			}
		}
	}
	consumer := func(types.Record) error {
		return failure
	}

	err := dispatchStream(context.Background(), producer, consumer)
	assert.ErrorIs(t, err, failure)
}

func TestDispatchStreamReturnsProducerFailure(t *testing.T) {
	producer := func(context.Context, chan<- types.Record) error {
		return types.ErrTraversal
	}
	err := dispatchStream(context.Background(), producer, func(types.Record) error { return nil })
	assert.ErrorIs(t, err, types.ErrTraversal)
}
