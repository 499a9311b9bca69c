package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/stretchr/testify/assert"
)

type scriptedPinger struct {
	results []error
	i       int
}

func (p *scriptedPinger) Ping(context.Context) error {
	err := p.results[p.i]
	p.i++
	return err
}

type countingRegistrar struct {
	mu   sync.Mutex
	tags []string
}

func (r *countingRegistrar) Register(_ context.Context, tag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
	return true
}

func TestWatcher_RegistersOnReconnect(t *testing.T) {
	down := errors.New("down")
	p := &scriptedPinger{results: []error{down, nil, nil, down, nil}}
	r := &countingRegistrar{}
	w := NewWatcher(p, r, logging.Nop(), 0)
	ctx := context.Background()

	w.Check(ctx)
	assert.False(t, w.Online())
	assert.Empty(t, r.tags)

	w.Check(ctx)
	w.Check(ctx)
	assert.True(t, w.Online())
	assert.Equal(t, []string{"sync-stories"}, r.tags)

	w.Check(ctx)
	assert.False(t, w.Online())
	w.Check(ctx)
	assert.Equal(t, []string{"sync-stories", "sync-stories"}, r.tags)
}
