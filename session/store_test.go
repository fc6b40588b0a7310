package session

import (
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/shelfbot/dialog"
)

func TestStorePutRejectsSecondDialog(t *testing.T) {
	s := NewStore()
	first := Session{UserID: 7, DialogType: dialog.TypeBook, Template: "book-tpl", WorkerID: "w-1", CreatedAt: time.Now()}
	if err := s.Put(first); err != nil {
		t.Fatalf("first Put: %v", err)
	}

	second := Session{UserID: 7, DialogType: dialog.TypeMovie, Template: "movie-tpl", WorkerID: "w-2"}
	if err := s.Put(second); !errors.Is(err, ErrActiveSession) {
		t.Fatalf("second Put = %v, want ErrActiveSession", err)
	}

	got, ok := s.Get(7)
	if !ok || got.WorkerID != "w-1" {
		t.Errorf("Get = %+v, %v; original session must survive", got, ok)
	}
}

func TestStoreRemove(t *testing.T) {
	s := NewStore()
	if _, ok := s.Remove(1); ok {
		t.Fatal("Remove on empty store reported a session")
	}

	s.Put(Session{UserID: 1, DialogType: dialog.TypeQuote, WorkerID: "w-9"})
	sess, ok := s.Remove(1)
	if !ok || sess.WorkerID != "w-9" {
		t.Fatalf("Remove = %+v, %v", sess, ok)
	}
	if _, ok := s.Get(1); ok {
		t.Error("session still present after Remove")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	s := NewStore()
	s.Put(Session{UserID: 1, DialogType: dialog.TypeBook, WorkerID: "w-1"})
	s.Put(Session{UserID: 2, DialogType: dialog.TypeBook, WorkerID: "w-2"})

	s.Remove(1)
	if _, ok := s.Get(2); !ok {
		t.Error("removing user 1 dropped user 2's session")
	}
}
