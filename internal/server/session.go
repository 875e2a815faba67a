package server

import (
	"context"
	"sync"

	"github.com/matzehuels/mindtree/pkg/editor"
	"github.com/matzehuels/mindtree/pkg/event"
	"github.com/matzehuels/mindtree/pkg/format"
)

// session is one loaded map. mu serializes every use of ed, which is not
// safe for concurrent use.
type session struct {
	mu     sync.Mutex
	id     string
	ed     *editor.Editor
	format format.Format
	closed bool
}

func (sess *session) close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.closed {
		sess.ed.Close()
		sess.closed = true
	}
}

// open returns the loaded session for id, loading it from the store on a
// miss.
func (s *Server) open(ctx context.Context, id string) (*session, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if sess, ok := s.maps.Get(id); ok {
		return sess, nil
	}
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := format.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	f, err := format.ParseFormat(string(doc.Format))
	if err != nil {
		return nil, err
	}

	opts := s.opts.Editor
	opts.Bus = nil
	ed := editor.New(opts)
	ed.Subscribe(func(e event.Event) {
		s.logger.Debug("map event", "map", id, "type", e.Type, "action", e.Action, "node", e.NodeID)
	})
	ed.Load(m)

	sess := &session{id: id, ed: ed, format: f}
	s.maps.Add(id, sess)
	s.logger.Debug("loaded map", "id", id, "nodes", m.Len(), "format", f)
	return sess, nil
}

// forget unloads id so the next request reads the store again.
func (s *Server) forget(id string) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.maps.Remove(id)
}

// edit runs fn on the loaded map and persists the result when fn succeeds.
func (s *Server) edit(ctx context.Context, id string, fn func(ed *editor.Editor) error) (*session, error) {
	sess, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess.ed); err != nil {
		return sess, err
	}
	return sess, s.persist(ctx, sess)
}

// view runs fn on the loaded map without persisting.
func (s *Server) view(ctx context.Context, id string, fn func(ed *editor.Editor) error) error {
	sess, err := s.open(ctx, id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.ed)
}

// persist writes the session's tree back in its original format. The
// caller holds sess.mu.
func (s *Server) persist(ctx context.Context, sess *session) error {
	doc, err := format.ToDocument(sess.ed.Mind(), sess.format)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, sess.id, doc)
}
