package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSizer struct {
	n   int
	err error
}

func (f fakeSizer) Size() (int, error) { return f.n, f.err }

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("down") }

func TestRefresh_RedisDisabled(t *testing.T) {
	m := New(ok, nil, fakeSizer{n: 4}, 0, nil)
	s := m.Refresh(context.Background())

	assert.True(t, s.Database)
	assert.False(t, s.RedisEnabled)
	assert.True(t, s.Buffer)
	assert.Equal(t, 4, s.BufferSize)
	assert.True(t, m.IsOnline())
}

func TestRefresh_RedisDown(t *testing.T) {
	m := New(ok, down, nil, 0, nil)
	m.Refresh(context.Background())

	s := m.GetStatus()
	assert.True(t, s.RedisEnabled)
	assert.False(t, s.Redis)
	assert.False(t, s.Buffer)
	assert.False(t, m.IsOnline())
}

func TestRefresh_DatabaseDown(t *testing.T) {
	m := New(down, ok, fakeSizer{err: errors.New("closed")}, 0, nil)
	m.Refresh(context.Background())

	assert.False(t, m.IsOnline())
	assert.False(t, m.GetStatus().Buffer)
}

func TestStartStop(t *testing.T) {
	m := New(ok, nil, nil, 0, nil)
	m.Start()
	assert.True(t, m.IsOnline())
	m.Stop()
	m.Stop()
}
