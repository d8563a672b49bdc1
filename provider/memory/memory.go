// Package memory is an in-process Provider: a map guarded by a RWMutex with
// per-entry TTLs. Entries are lost with the process, like sessionStorage.
package memory

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/kvcell/provider"
)

type entry struct {
	b   []byte
	exp time.Time // zero => no expiry
}

type Provider struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{m: make(map[string]entry), now: time.Now}
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	e, ok := p.m[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && !p.now().Before(e.exp) {
		p.mu.Lock()
		// re-check: a Set may have replaced the expired entry
		if cur, ok := p.m[key]; ok && cur.exp.Equal(e.exp) {
			delete(p.m, key)
		}
		p.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.b...), true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	e := entry{b: append([]byte(nil), value...)}
	if ttl > 0 {
		e.exp = p.now().Add(ttl)
	}
	p.mu.Lock()
	p.m[key] = e
	p.mu.Unlock()
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

func (p *Provider) Close(context.Context) error {
	p.mu.Lock()
	p.m = make(map[string]entry)
	p.mu.Unlock()
	return nil
}
