package core

import (
	"github.com/google/uuid"
)

// State is a step of the reply workflow
type State int

const (
	StateEmpty State = iota
	StateAnalyzed
	StateResponseGenerated
	StateCustomizing
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAnalyzed:
		return "analyzed"
	case StateResponseGenerated:
		return "response generated"
	case StateCustomizing:
		return "customizing"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Session is the state of one reply workflow. Handlers on Assistant take a
// Session and return the next one; a handler that fails returns the session
// it was given.
type Session struct {
	ID        string
	State     State
	EmailText string
	// Subject of the received email when it was loaded from a message file
	Subject  string
	Analysis *AnalysisResult
	Tone     Tone
	Draft    *DraftResponse
	// Customized is the user's editable copy of the draft
	Customized    string
	SignatureName string
	Finalized     string
}

// NewSession starts an empty workflow
func NewSession() Session {
	return Session{
		ID:    uuid.NewString(),
		State: StateEmpty,
	}
}

// resetForward drops everything derived from a previous analysis. The
// signature choice is a user preference and survives.
func (s Session) resetForward() Session {
	s.Tone = ""
	s.Draft = nil
	s.Customized = ""
	s.Finalized = ""
	return s
}

func (s Session) canEdit() bool {
	return s.State == StateCustomizing || s.State == StateFinalized
}
