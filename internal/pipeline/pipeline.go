// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the scan-to-verdict and search-to-verdict flows.
// Each screen owns one state value and moves it through a linear sequence
// of transitions. Every asynchronous step takes a sequence token when it
// starts; its result is applied only if the token is still current, so a
// superseded or closed screen silently drops late results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/pdiddy/safebites/internal/verdict"
	"github.com/pdiddy/safebites/pkg/types"
)

var (
	ErrClosed           = errors.New("screen closed")
	ErrNoImage          = errors.New("no image selected")
	ErrNoText           = errors.New("no text detected")
	ErrNoCandidate      = errors.New("no candidate to check")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrCandidateOpen    = errors.New("candidate view is open")
	ErrSuperseded       = errors.New("superseded by a newer action")
	ErrPermissionDenied = errors.New("permission denied")
	ErrCanceled         = errors.New("canceled")
)

// Resolver turns a candidate and profile into a verdict.
// *verdict.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, candidate types.Candidate, profile types.AllergenProfile) (types.Verdict, error)
}

// ProfileSource yields the current allergen profile, or false when there
// is none. *session.Store satisfies it.
type ProfileSource interface {
	Profile() (types.AllergenProfile, bool)
}

// ProfileFunc adapts a function to ProfileSource.
type ProfileFunc func() (types.AllergenProfile, bool)

// Profile calls f.
func (f ProfileFunc) Profile() (types.AllergenProfile, bool) { return f() }

// StaticProfile always yields p, reporting false when it is empty.
func StaticProfile(p types.AllergenProfile) ProfileSource {
	return ProfileFunc(func() (types.AllergenProfile, bool) { return p, !p.IsEmpty() })
}

// Recorder stores resolved verdicts. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, candidate types.Candidate, v types.Verdict) error
}

// Observer receives every state transition and notice of a screen. It is
// called with the screen's lock held and must not call back into the screen.
type Observer interface {
	StateChanged(s State)
	Noticed(n Notice)
}

// Funcs adapts a pair of functions to Observer. Either may be nil.
type Funcs struct {
	OnState  func(State)
	OnNotice func(Notice)
}

// StateChanged calls OnState if set.
func (f Funcs) StateChanged(s State) {
	if f.OnState != nil {
		f.OnState(s)
	}
}

// Noticed calls OnNotice if set.
func (f Funcs) Noticed(n Notice) {
	if f.OnNotice != nil {
		f.OnNotice(n)
	}
}

// Deps are the collaborators shared by both screens.
type Deps struct {
	Resolver Resolver
	Profile  ProfileSource
	Recorder Recorder // optional
	Observer Observer // optional
	Log      io.Writer
}

// screen holds the state, the sequence token, and the check step shared by
// the scan and search screens.
type screen struct {
	id   uuid.UUID
	deps Deps

	mu     sync.Mutex
	state  State
	seq    uint64
	closed bool
}

func newScreen(deps Deps) *screen {
	if deps.Log == nil {
		deps.Log = io.Discard
	}
	return &screen{id: uuid.New(), deps: deps, state: Idle{}}
}

// ID identifies the screen instance in log lines.
func (s *screen) ID() uuid.UUID { return s.id }

// State returns the current state.
func (s *screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// setLocked replaces the state and notifies the observer.
func (s *screen) setLocked(st State) {
	s.state = st
	if s.deps.Observer != nil {
		s.deps.Observer.StateChanged(st)
	}
}

func (s *screen) noticeLocked(k NoticeKind) {
	if s.deps.Observer != nil {
		s.deps.Observer.Noticed(newNotice(k))
	}
}

// beginLocked voids every in-flight step and returns the new token.
func (s *screen) beginLocked() uint64 {
	s.seq++
	return s.seq
}

// currentLocked reports whether a step started with token may still apply.
func (s *screen) currentLocked(token uint64) bool {
	return !s.closed && s.seq == token
}

// invalidate drops every in-flight step and moves to Idle.
func (s *screen) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.beginLocked()
	s.setLocked(Idle{})
}

// close makes every later result a no-op. No transition is emitted.
func (s *screen) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seq++
}

// check resolves the candidate held by the current state. A second check
// supersedes the first: only the latest attempt reaches Resolved.
func (s *screen) check(ctx context.Context) (types.Verdict, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.Verdict{}, ErrClosed
	}
	cand, ok := checkable(s.state)
	if !ok {
		kind := s.state.Kind()
		s.mu.Unlock()
		if kind == KindImageSelected {
			return types.Verdict{}, ErrNoText
		}
		return types.Verdict{}, ErrNoCandidate
	}
	profile, ok := s.deps.Profile.Profile()
	if !ok {
		s.noticeLocked(NoticeNoProfile)
		s.mu.Unlock()
		return types.Verdict{}, verdict.ErrNoProfile
	}
	prev := s.state
	token := s.beginLocked()
	s.setLocked(Checking{Candidate: cand, Attempt: token})
	s.mu.Unlock()

	v, err := s.deps.Resolver.Resolve(ctx, cand, profile)

	s.mu.Lock()
	if !s.currentLocked(token) {
		s.mu.Unlock()
		return types.Verdict{}, ErrSuperseded
	}
	if errors.Is(err, verdict.ErrNoProfile) {
		s.noticeLocked(NoticeNoProfile)
		s.setLocked(prev)
		s.mu.Unlock()
		return types.Verdict{}, err
	}
	if err != nil {
		fmt.Fprintf(s.deps.Log, "warning: screen %s: check of %q failed, reporting not safe: %v\n", s.id, cand.ProductName, err)
		v = verdict.FailClosed(cand, profile)
	}
	s.setLocked(Resolved{Candidate: cand, Verdict: v})
	s.mu.Unlock()

	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.Record(ctx, cand, v); err != nil {
			fmt.Fprintf(s.deps.Log, "warning: recording verdict for %q: %v\n", cand.ProductName, err)
		}
	}
	return v, nil
}
