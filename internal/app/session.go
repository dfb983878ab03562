// Package app drives the application flow: one session owns the
// current document snapshot, moves between screens, and guards async
// assist results against staleness.
package app

import (
	"context"
	"fmt"
	"sync"

	"cvforge/internal/errors"
	"cvforge/internal/resume"
	"cvforge/internal/score"
	"cvforge/internal/store"
)

// Screen names one application view.
type Screen string

const (
	ScreenLanding Screen = "landing"
	ScreenBuild   Screen = "build"
	ScreenPreview Screen = "preview"
	ScreenJobs    Screen = "jobs"
)

// transitions lists where each screen can go. Jobs is additionally
// premium-gated.
var transitions = map[Screen][]Screen{
	ScreenLanding: {ScreenBuild},
	ScreenBuild:   {ScreenLanding, ScreenPreview, ScreenJobs},
	ScreenPreview: {ScreenBuild, ScreenJobs},
	ScreenJobs:    {ScreenBuild, ScreenPreview},
}

// Token guards an async operation site. A token is only valid while it
// is the newest one issued for its site.
type Token struct {
	site string
	seq  uint64
}

// Session is the single writer of the document. Reads return the
// current immutable snapshot; every mutation swaps the whole snapshot
// and triggers a fire-and-forget save.
type Session struct {
	mu           sync.Mutex
	doc          resume.Document
	screen       Screen
	hasPriorWork bool
	premium      bool
	seqs         map[string]uint64

	store  store.Store
	logger *errors.Logger
}

// NewSession loads the stored document and starts on the landing
// screen. Corrupt or missing state yields the default document; the
// session always starts.
func NewSession(ctx context.Context, st store.Store, premium bool, logger *errors.Logger) (*Session, error) {
	doc, hasPriorWork, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &Session{
		doc:          doc,
		screen:       ScreenLanding,
		hasPriorWork: hasPriorWork,
		premium:      premium,
		seqs:         make(map[string]uint64),
		store:        st,
		logger:       logger,
	}, nil
}

// Document returns the current snapshot.
func (s *Session) Document() resume.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Score recomputes the completeness score from the current snapshot.
func (s *Session) Score() int {
	return score.Score(s.Document())
}

// HasPriorWork reports whether the loaded document contained prior
// work; the landing screen words its call to action accordingly.
func (s *Session) HasPriorWork() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPriorWork
}

// Screen returns the active screen.
func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Go moves to another screen. Invalid transitions and non-premium
// access to the jobs screen are rejected.
func (s *Session) Go(target Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if target == ScreenJobs && !s.premium {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"job matching requires a premium account", nil)
	}

	for _, allowed := range transitions[s.screen] {
		if allowed == target {
			s.screen = target
			return nil
		}
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("cannot move from %s to %s", s.screen, target), nil)
}

// Apply runs one edit against the current snapshot and swaps in the
// result. The edit receives a value copy and must return the new
// document; errors leave the session unchanged. A successful swap
// triggers an async save.
func (s *Session) Apply(edit func(resume.Document) (resume.Document, error)) error {
	s.mu.Lock()
	next, err := edit(s.doc)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.doc = next
	s.hasPriorWork = s.hasPriorWork || resume.HasPriorWork(next)
	s.mu.Unlock()

	s.autoSave(next)
	return nil
}

// Replace swaps in an externally produced document, for example after
// an import or a store file change.
func (s *Session) Replace(doc resume.Document) {
	healed := resume.Heal(doc)

	s.mu.Lock()
	s.doc = healed
	s.hasPriorWork = s.hasPriorWork || resume.HasPriorWork(healed)
	s.mu.Unlock()

	s.autoSave(healed)
}

// Reload swaps in a document that already lives in the store, for
// example after an external file change. No save is triggered, so a
// reload can never echo back into the store watcher.
func (s *Session) Reload(doc resume.Document) {
	healed := resume.Heal(doc)

	s.mu.Lock()
	s.doc = healed
	s.hasPriorWork = s.hasPriorWork || resume.HasPriorWork(healed)
	s.mu.Unlock()
}

// autoSave persists the snapshot without blocking the caller. Failure
// is logged, never surfaced; last write wins at the store.
func (s *Session) autoSave(doc resume.Document) {
	go func() {
		if err := s.store.Save(context.Background(), doc); err != nil {
			if s.logger != nil {
				s.logger.LogError(err, "Auto-save failed")
			}
		}
	}()
}

// Begin registers a new in-flight async operation for a site (for
// example "summary" or "jobs") and invalidates any earlier token for
// that site.
func (s *Session) Begin(site string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[site]++
	return Token{site: site, seq: s.seqs[site]}
}

// Commit applies the result of an async operation if its token is
// still the newest for the site. Stale results are discarded and
// Commit reports false; last response to start wins, not last to
// finish.
func (s *Session) Commit(t Token, edit func(resume.Document) resume.Document) bool {
	s.mu.Lock()
	if s.seqs[t.site] != t.seq {
		s.mu.Unlock()
		return false
	}
	next := edit(s.doc)
	s.doc = next
	s.hasPriorWork = s.hasPriorWork || resume.HasPriorWork(next)
	s.mu.Unlock()

	s.autoSave(next)
	return true
}
