package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunnerStopsAllOnFirstExit(t *testing.T) {
	failure := errors.New("sensor failed")
	r := NewRunner().Go(
		NamedRun("blocker", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunFunc(func(ctx context.Context) error {
			return failure
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, failure))
	require.Equal(t, failure.Error(), err.Error())
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	a, b := errors.New("a"), errors.New("b")
	err := errs.Add(a, nil, b).Aggregate()
	require.Equal(t, "multiple errors:\na\nb", err.Error())
	require.True(t, errors.Is(err, b))
}

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	closed := 0
	closer := closerFunc(func() error {
		closed++
		close(unblock)
		return nil
	})
	time.AfterFunc(10*time.Millisecond, cancel)
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closed)
}
