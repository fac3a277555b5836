package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestShutdown_ReverseOrderAndErrors(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	boom := errors.New("boom")

	m.Register("db", func(context.Context) error { order = append(order, "db"); return nil })
	m.Register("cache", func(context.Context) error { order = append(order, "cache"); return boom })
	m.Register("http", func(context.Context) error { order = append(order, "http"); return nil })
	m.Register("nil", nil)

	err := m.Shutdown(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "cache: boom")
	assert.Equal(t, []string{"http", "cache", "db"}, order)
}

func TestShutdown_RunsOnceAndSharesResult(t *testing.T) {
	m := New(time.Second, nil)
	boom := errors.New("boom")
	var (
		mu    sync.Mutex
		calls int
	)
	m.Register("worker", func(context.Context) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return boom
	})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Shutdown(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
}

func TestShutdown_AppliesTimeout(t *testing.T) {
	m := New(10*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestShutdown_LogsEachComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := New(time.Second, zap.New(core))
	m.Register("buffer", func(context.Context) error { return nil })

	require.NoError(t, m.Shutdown(context.Background()))
	entries := logs.FilterMessage("component stopped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "buffer", entries[0].ContextMap()["component"])
}

func TestWatch_StopCancelsContext(t *testing.T) {
	m := New(time.Second, nil)
	ctx, stop := m.Watch(context.Background())
	assert.NoError(t, ctx.Err())

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestWatch_FollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := New(0, nil).Watch(parent)
	defer stop()

	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
