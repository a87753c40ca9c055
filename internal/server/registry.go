package server

import (
	"fmt"
	"sync"

	"github.com/ironsheep/shot-group-mcp/internal/session"
)

// entry pairs an edit session with the lock that serialises access to it.
type entry struct {
	mu   sync.Mutex
	sess *session.Session
	path string
}

// registry holds the open sessions. The registry lock only guards the maps;
// each session has its own mutex, so operations on different sessions never
// wait on each other.
type registry struct {
	mu     sync.RWMutex
	byID   map[string]*entry
	byPath map[string]string
}

func newRegistry() *registry {
	return &registry{
		byID:   make(map[string]*entry),
		byPath: make(map[string]string),
	}
}

// put registers sess for path. A session already open for the same path is
// replaced and its ID returned.
func (r *registry) put(path string, sess *session.Session) (replaced string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byPath[path]; ok {
		delete(r.byID, old)
		replaced = old
	}
	r.byID[sess.ID()] = &entry{sess: sess, path: path}
	r.byPath[path] = sess.ID()
	return replaced
}

func (r *registry) get(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", id)
	}
	return e, nil
}

// remove drops the session and returns its entry.
func (r *registry) remove(id string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", id)
	}
	delete(r.byID, id)
	if r.byPath[e.path] == id {
		delete(r.byPath, e.path)
	}
	return e, nil
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// with runs fn while holding the session's lock.
func (r *registry) with(id string, fn func(*session.Session) (interface{}, error)) (interface{}, error) {
	e, err := r.get(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}
