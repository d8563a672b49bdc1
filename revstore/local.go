package revstore

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	Rev       uint64
	UpdatedAt time.Time
}

// Local keeps revisions in-process. It is the default for cells that share
// only in-process buses.
// An optional sweep loop prunes keys that have not been bumped for the
// retention period; a pruned key restarts at 0.
type Local struct {
	mu     sync.RWMutex
	revs   map[string]localEntry
	ticker *time.Ticker
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	now    func() time.Time
}

var _ RevStore = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{
		revs: make(map[string]localEntry),
		now:  time.Now,
	}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Current(_ context.Context, k string) (uint64, error) {
	s.mu.RLock()
	e := s.revs[k]
	s.mu.RUnlock()
	return e.Rev, nil
}

func (s *Local) Bump(_ context.Context, k string) (uint64, error) {
	now := s.now()
	s.mu.Lock()
	e := s.revs[k]
	e.Rev++
	e.UpdatedAt = now
	s.revs[k] = e
	s.mu.Unlock()
	return e.Rev, nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := s.now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.revs {
		if e.UpdatedAt.Before(cutoff) {
			delete(s.revs, k)
		}
	}
	s.mu.Unlock()
}

// Close stops the sweep loop. Safe to call multiple times.
func (s *Local) Close(_ context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			s.ticker.Stop()
			close(s.stopCh)
			s.wg.Wait()
		}
	})
	return nil
}
