// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/pdiddy/safebites/pkg/types"
)

// Kind names a pipeline state.
type Kind int

const (
	KindIdle Kind = iota
	KindImageSelected
	KindTextDetected
	KindSearching
	KindCandidateSelected
	KindChecking
	KindResolved
	KindFailed
)

var kindNames = [...]string{
	KindIdle:              "idle",
	KindImageSelected:     "image-selected",
	KindTextDetected:      "text-detected",
	KindSearching:         "searching",
	KindCandidateSelected: "candidate-selected",
	KindChecking:          "checking",
	KindResolved:          "resolved",
	KindFailed:            "failed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// State is one of the concrete state types below. Values are immutable
// snapshots; a screen replaces its state, it never edits one in place.
type State interface {
	Kind() Kind
}

// Idle is the initial state and the target of retry and close-candidate.
type Idle struct{}

// ImageSelected holds the picked image. It is also the state after a failed
// or empty recognition, so the image can be reused.
type ImageSelected struct {
	URI string
}

// TextDetected holds the main text found in the image.
type TextDetected struct {
	URI  string
	Text string
}

// Searching holds the live query and the latest committed results. Pending
// is true while a debounced filter has not yet committed.
type Searching struct {
	Query   string
	Results []types.Product
	Pending bool
}

// CandidateSelected holds a product picked from search results.
type CandidateSelected struct {
	Candidate types.Candidate
}

// Checking carries the candidate under resolution and the attempt token.
// Only the attempt matching the screen's current token may resolve.
type Checking struct {
	Candidate types.Candidate
	Attempt   uint64
}

// Resolved holds the verdict of the latest attempt.
type Resolved struct {
	Candidate types.Candidate
	Verdict   types.Verdict
}

// Failed records an unrecoverable step failure, such as an unreadable image.
type Failed struct {
	Reason string
}

func (Idle) Kind() Kind              { return KindIdle }
func (ImageSelected) Kind() Kind     { return KindImageSelected }
func (TextDetected) Kind() Kind      { return KindTextDetected }
func (Searching) Kind() Kind         { return KindSearching }
func (CandidateSelected) Kind() Kind { return KindCandidateSelected }
func (Checking) Kind() Kind          { return KindChecking }
func (Resolved) Kind() Kind          { return KindResolved }
func (Failed) Kind() Kind            { return KindFailed }

// checkable returns the candidate a check may run against from s.
func checkable(s State) (types.Candidate, bool) {
	switch st := s.(type) {
	case TextDetected:
		return types.Candidate{ProductName: st.Text, Source: types.SourceScan}, true
	case CandidateSelected:
		return st.Candidate, true
	case Checking:
		return st.Candidate, true
	case Resolved:
		return st.Candidate, true
	}
	return types.Candidate{}, false
}

// candidateOpen reports whether the candidate view is showing.
func candidateOpen(s State) bool {
	switch s.(type) {
	case CandidateSelected, Checking, Resolved:
		return true
	}
	return false
}

// NoticeKind classifies a user-facing notice.
type NoticeKind int

const (
	NoticePermissionDenied NoticeKind = iota
	NoticeNoText
	NoticeNoProfile
	NoticeProcessingError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticePermissionDenied:
		return "permission-denied"
	case NoticeNoText:
		return "no-text"
	case NoticeNoProfile:
		return "no-profile"
	case NoticeProcessingError:
		return "processing-error"
	}
	return "unknown"
}

// Notice is a dismissible message. Notices never change state by themselves.
type Notice struct {
	Kind    NoticeKind
	Message string
}

var noticeMessages = map[NoticeKind]string{
	NoticePermissionDenied: "Permission to access the camera or gallery was denied.",
	NoticeNoText:           "No text detected in the image. Try another photo.",
	NoticeNoProfile:        "No allergies found in your profile.",
	NoticeProcessingError:  "Failed to process the image. Please try again.",
}

func newNotice(k NoticeKind) Notice {
	return Notice{Kind: k, Message: noticeMessages[k]}
}
