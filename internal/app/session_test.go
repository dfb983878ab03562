package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"cvforge/internal/editor"
	"cvforge/internal/resume"
)

// memStore records saves and signals each one so tests can wait for
// the fire-and-forget writes.
type memStore struct {
	mu    sync.Mutex
	doc   resume.Document
	saves int
	err   error
	saved chan struct{}
}

func newMemStore() *memStore {
	return &memStore{doc: resume.NewDocument(), saved: make(chan struct{}, 16)}
}

func (m *memStore) Save(ctx context.Context, doc resume.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	select {
	case m.saved <- struct{}{}:
	default:
	}
	if m.err != nil {
		return m.err
	}
	m.doc = doc
	return nil
}

func (m *memStore) Load(ctx context.Context) (resume.Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc, resume.HasPriorWork(m.doc), nil
}

func (m *memStore) waitForSave(t *testing.T) {
	t.Helper()
	select {
	case <-m.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("Auto-save did not run")
	}
}

func newTestSession(t *testing.T, st *memStore, premium bool) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), st, premium, nil)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestSessionStartsOnLanding(t *testing.T) {
	s := newTestSession(t, newMemStore(), false)

	if s.Screen() != ScreenLanding {
		t.Errorf("Initial screen = %q, want landing", s.Screen())
	}
	if s.HasPriorWork() {
		t.Error("Fresh store should not report prior work")
	}
}

func TestSessionReportsPriorWork(t *testing.T) {
	st := newMemStore()
	st.doc.PersonalInfo.FullName = "Maria Santos"

	s := newTestSession(t, st, false)
	if !s.HasPriorWork() {
		t.Error("Stored document with content should report prior work")
	}
}

func TestScreenTransitions(t *testing.T) {
	s := newTestSession(t, newMemStore(), true)

	if err := s.Go(ScreenPreview); err == nil {
		t.Error("landing -> preview should be rejected")
	}
	if err := s.Go(ScreenBuild); err != nil {
		t.Fatalf("landing -> build failed: %v", err)
	}
	if err := s.Go(ScreenPreview); err != nil {
		t.Fatalf("build -> preview failed: %v", err)
	}
	if err := s.Go(ScreenJobs); err != nil {
		t.Fatalf("preview -> jobs failed: %v", err)
	}
	if s.Screen() != ScreenJobs {
		t.Errorf("Screen = %q, want jobs", s.Screen())
	}
}

func TestJobsScreenPremiumGated(t *testing.T) {
	s := newTestSession(t, newMemStore(), false)

	if err := s.Go(ScreenBuild); err != nil {
		t.Fatalf("landing -> build failed: %v", err)
	}
	if err := s.Go(ScreenJobs); err == nil {
		t.Error("Jobs screen should be rejected without premium")
	}
	if s.Screen() != ScreenBuild {
		t.Errorf("Failed transition changed screen to %q", s.Screen())
	}
}

func TestApplySwapsSnapshotAndSaves(t *testing.T) {
	st := newMemStore()
	s := newTestSession(t, st, false)

	err := s.Apply(func(doc resume.Document) (resume.Document, error) {
		return editor.SetPersonalField(doc, "fullName", "Ada Lovelace")
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if s.Document().PersonalInfo.FullName != "Ada Lovelace" {
		t.Errorf("Snapshot not swapped: %q", s.Document().PersonalInfo.FullName)
	}
	if !s.HasPriorWork() {
		t.Error("Edit should mark prior work")
	}
	st.waitForSave(t)
}

func TestApplyErrorLeavesSessionUnchanged(t *testing.T) {
	s := newTestSession(t, newMemStore(), false)
	before := s.Document()

	err := s.Apply(func(doc resume.Document) (resume.Document, error) {
		return doc, fmt.Errorf("edit failed")
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if got := s.Document(); got.PersonalInfo != before.PersonalInfo {
		t.Error("Failed edit changed the snapshot")
	}
}

func TestAutoSaveFailureDoesNotSurface(t *testing.T) {
	st := newMemStore()
	st.err = fmt.Errorf("disk full")
	s := newTestSession(t, st, false)

	err := s.Apply(func(doc resume.Document) (resume.Document, error) {
		return editor.SetPersonalField(doc, "fullName", "Ada")
	})
	if err != nil {
		t.Fatalf("Apply should not surface save failures: %v", err)
	}
	st.waitForSave(t)
}

func TestCommitDiscardsStaleResults(t *testing.T) {
	st := newMemStore()
	s := newTestSession(t, st, true)

	first := s.Begin("jobs")
	second := s.Begin("jobs")

	// The older request resolves last; its result must be discarded.
	if applied := s.Commit(first, func(doc resume.Document) resume.Document {
		return editor.ReplaceJobMatches(doc, []resume.JobOpportunity{{ID: "stale", Title: "Old"}})
	}); applied {
		t.Error("Stale token was committed")
	}

	if applied := s.Commit(second, func(doc resume.Document) resume.Document {
		return editor.ReplaceJobMatches(doc, []resume.JobOpportunity{{ID: "fresh", Title: "New"}})
	}); !applied {
		t.Fatal("Latest token was rejected")
	}

	matches := s.Document().JobMatches
	if len(matches) != 1 || matches[0].ID != "fresh" {
		t.Errorf("Job matches = %+v, want only the fresh result", matches)
	}
}

func TestBeginIsPerSite(t *testing.T) {
	s := newTestSession(t, newMemStore(), false)

	summary := s.Begin("summary")
	s.Begin("skills")

	// A newer token for another site must not invalidate this one.
	if applied := s.Commit(summary, func(doc resume.Document) resume.Document {
		out, _ := editor.SetPersonalField(doc, "summary", "Generated summary text.")
		return out
	}); !applied {
		t.Error("Token invalidated by an unrelated site")
	}
}

func TestScoreRecomputes(t *testing.T) {
	s := newTestSession(t, newMemStore(), false)
	base := s.Score()

	err := s.Apply(func(doc resume.Document) (resume.Document, error) {
		return editor.AddItem(doc, editor.Experiences, resume.Experience{ID: resume.NewItemID(), Title: "Engineer"})
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if got := s.Score(); got != base+20 {
		t.Errorf("Score after adding experience = %d, want %d", got, base+20)
	}
}
