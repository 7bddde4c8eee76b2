package models

import (
	"context"
	"sync"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// session holds the two live subscriptions of an authenticated session.
type session struct {
	cancel context.CancelFunc
	subs   []*Subscription
	wg     sync.WaitGroup
}

// StartSession subscribes to both remote collections and applies every
// delivered snapshot until EndSession is called or ctx is done.
// Starting an already running session is a no-op.
func (s *Store) StartSession(ctx context.Context) error {
	if s.remote == nil {
		return ErrRemoteUnavailable
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if s.session != nil {
		return nil
	}

	// Only snapshots delivered to this session count as observed.
	s.mu.Lock()
	s.resetSyncLocked()
	s.mu.Unlock()

	sctx, cancel := context.WithCancel(ctx)
	sess := &session{cancel: cancel}

	for _, coll := range []Collection{CollectionModules, CollectionItems} {
		sub, err := s.remote.Subscribe(sctx, coll)
		if err != nil {
			for _, started := range sess.subs {
				started.Cancel()
			}
			cancel()
			s.setStatus(StatusError, err)
			return serr.Wrap(err, "failed to subscribe to "+string(coll))
		}
		sess.subs = append(sess.subs, sub)
	}

	s.setStatus(StatusSyncing, nil)
	for _, sub := range sess.subs {
		sess.wg.Add(1)
		go s.pump(sctx, sess, sub)
	}
	s.session = sess

	logger.Info("Remote session started")
	return nil
}

// pump applies snapshots from one subscription. It stops when the session
// ends, so no snapshot is applied after EndSession returns.
func (s *Store) pump(ctx context.Context, sess *session, sub *Subscription) {
	defer sess.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.Snapshots:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			s.ApplySnapshot(snap)
		}
	}
}

// EndSession cancels both subscriptions and waits until no further snapshot
// can be applied. The in-memory records are kept; the store is no longer
// synced until a new session observes both collections.
func (s *Store) EndSession() {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if s.session == nil {
		return
	}

	s.session.cancel()
	for _, sub := range s.session.subs {
		sub.Cancel()
	}
	s.session.wg.Wait()
	s.session = nil

	s.mu.Lock()
	if s.status != StatusError {
		s.status = StatusOffline
	}
	s.resetSyncLocked()
	s.mu.Unlock()

	logger.Info("Remote session ended")
}

// SessionActive reports whether subscriptions are running.
func (s *Store) SessionActive() bool {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return s.session != nil
}
