package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadTimeout bounds a shared load once it no longer follows the caller's
// context.
const LoadTimeout = 30 * time.Second

// Session memoizes the catalog for one process so that a single interaction
// does not hit the store more than once. Call Invalidate after every
// successful mutation or external change.
//
// Only Loaded results are memoized; while the store is unreachable every
// call tries again and falls back to the fixture.
type Session struct {
	adapter *Adapter
	group   singleflight.Group

	mu   sync.Mutex
	memo *LoadResult
	gen  uint64
}

// NewSession creates a session over a.
func NewSession(a *Adapter) *Session {
	return &Session{adapter: a}
}

// Adapter returns the underlying adapter.
func (s *Session) Adapter() *Adapter { return s.adapter }

// Catalog returns the memoized load, loading once if needed. Concurrent
// callers share a single in-flight load that is detached from any one
// caller's cancellation. A caller that gives up gets the fixture with its
// context error, while the others still receive the store's answer.
func (s *Session) Catalog(ctx context.Context) LoadResult {
	s.mu.Lock()
	if s.memo != nil {
		res := *s.memo
		s.mu.Unlock()
		return res
	}
	gen := s.gen
	s.mu.Unlock()

	ch := s.group.DoChan(s.adapter.Source(), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		res := s.adapter.Load(loadCtx)
		if res.State == Loaded {
			s.mu.Lock()
			if s.gen == gen {
				s.memo = &res
			}
			s.mu.Unlock()
		}
		return res, nil
	})

	select {
	case r := <-ch:
		return r.Val.(LoadResult)
	case <-ctx.Done():
		return s.adapter.interrupted(ctx.Err())
	}
}

// Fresh loads from the store without consulting or updating the memo.
func (s *Session) Fresh(ctx context.Context) LoadResult {
	return s.adapter.Load(ctx)
}

// Invalidate drops the memoized catalog.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.memo = nil
	s.gen++
	s.mu.Unlock()
	s.group.Forget(s.adapter.Source())
}

// Cached reports whether a catalog is currently memoized.
func (s *Session) Cached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memo != nil
}
