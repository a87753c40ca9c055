package server

import (
	"image"
	"testing"

	"github.com/ironsheep/shot-group-mcp/internal/session"
	"github.com/ironsheep/shot-group-mcp/internal/shots"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	sess, err := session.New(img, shots.DefaultConfig())
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	return sess
}

func TestRegistry_PutGetRemove(t *testing.T) {
	r := newRegistry()
	a := newTestSession(t)
	b := newTestSession(t)

	if replaced := r.put("/targets/a.png", a); replaced != "" {
		t.Errorf("first put replaced %q", replaced)
	}
	if replaced := r.put("/targets/b.png", b); replaced != "" {
		t.Errorf("put for another path replaced %q", replaced)
	}
	if r.len() != 2 {
		t.Fatalf("len: got %d, want 2", r.len())
	}

	e, err := r.get(a.ID())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if e.sess != a || e.path != "/targets/a.png" {
		t.Errorf("get returned the wrong entry: %+v", e)
	}

	removed, err := r.remove(a.ID())
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if removed.path != "/targets/a.png" {
		t.Errorf("removed path: got %s", removed.path)
	}
	if _, err := r.get(a.ID()); err == nil {
		t.Error("removed session is still registered")
	}
	if _, err := r.remove(a.ID()); err == nil {
		t.Error("second remove should fail")
	}
	if r.len() != 1 {
		t.Errorf("len: got %d, want 1", r.len())
	}
}

func TestRegistry_ReplaceSamePath(t *testing.T) {
	r := newRegistry()
	first := newTestSession(t)
	second := newTestSession(t)

	r.put("/targets/a.png", first)
	if replaced := r.put("/targets/a.png", second); replaced != first.ID() {
		t.Errorf("replaced: got %q, want %q", replaced, first.ID())
	}
	if _, err := r.get(first.ID()); err == nil {
		t.Error("replaced session should be gone")
	}
	if r.len() != 1 {
		t.Errorf("len: got %d, want 1", r.len())
	}

	// Removing the stale ID must not unlink the path from its new session.
	if _, err := r.remove(first.ID()); err == nil {
		t.Error("stale ID should not be removable")
	}
	if r.byPath["/targets/a.png"] != second.ID() {
		t.Error("path no longer maps to the current session")
	}
}

func TestRegistry_With(t *testing.T) {
	r := newRegistry()
	sess := newTestSession(t)
	r.put("/targets/a.png", sess)

	got, err := r.with(sess.ID(), func(s *session.Session) (interface{}, error) {
		return s.Add(shots.Point{X: 5, Y: 5}), nil
	})
	if err != nil {
		t.Fatalf("with failed: %v", err)
	}
	if shot, ok := got.(session.Shot); !ok || shot.Point.X != 5 {
		t.Errorf("with result: got %#v", got)
	}
	if len(sess.Shots()) != 1 {
		t.Errorf("shots: got %d, want 1", len(sess.Shots()))
	}

	if _, err := r.with("missing", func(*session.Session) (interface{}, error) {
		t.Error("fn must not run for an unknown session")
		return nil, nil
	}); err == nil {
		t.Error("with should fail for an unknown session")
	}
}
