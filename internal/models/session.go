// Package models holds the per-connection session state and the value
// types that flow between the IMAP engine and the upstream adapter.
package models

import (
	"net"
	"time"
)

// State is the session's position in the IMAP state machine (§4.3).
type State int

const (
	NotAuth State = iota
	Auth
	Selected
	Logout
)

func (s State) String() string {
	switch s {
	case NotAuth:
		return "not-authenticated"
	case Auth:
		return "authenticated"
	case Selected:
		return "selected"
	case Logout:
		return "logout"
	default:
		return "unknown"
	}
}

// Sender identifies an upstream mailbox owner.
type Sender struct {
	ID    string
	Email string
}

// SelectedFolder is the per-session view of the currently opened
// mailbox folder, including the UID vector that defines the
// sequence-number mapping for this session (§3).
type SelectedFolder struct {
	SenderID     string
	FolderName   string
	UIDValidity  uint64
	UIDNext      uint64
	ReadOnly     bool
	MessageUIDs  []uint32 // strictly ascending
	HighestModSeq uint64
}

// SeqOf returns the 1-based sequence number of uid within the
// selected folder's UID vector, or 0 if uid is not present.
func (f *SelectedFolder) SeqOf(uid uint32) int {
	for i, u := range f.MessageUIDs {
		if u == uid {
			return i + 1
		}
	}
	return 0
}

// Splice removes uid from the UID vector, preserving ascending order,
// per the sequence-shift rule used by MOVE and EXPUNGE (§4.4, §5).
func (f *SelectedFolder) Splice(uid uint32) {
	for i, u := range f.MessageUIDs {
		if u == uid {
			f.MessageUIDs = append(f.MessageUIDs[:i], f.MessageUIDs[i+1:]...)
			return
		}
	}
}

// Session is the state owned by one connection. Never shared across
// connections; the IMAP server constructs one per accepted socket.
type Session struct {
	ID   string
	Peer net.Addr

	State State

	APIKey string // validated upstream API key, set after LOGIN/AUTHENTICATE

	// PinnedSender is set when the authenticated identity is bound to a
	// single sender (an email-username LOGIN); nil when the session can
	// see every sender ("api"/"*" login).
	PinnedSender *Sender

	SelectedFolder *SelectedFolder

	Extensions map[string]bool

	Idling    bool
	IdleTag   string
	IdleDeadline time.Time

	// Conn is the connection this session reads from and writes to;
	// only ever touched by this session's read loop.
	Conn net.Conn
}

// NewSession constructs a session in the not-authenticated state.
func NewSession(id string, peer net.Addr, conn net.Conn) *Session {
	return &Session{
		ID:         id,
		Peer:       peer,
		State:      NotAuth,
		Extensions: map[string]bool{},
		Conn:       conn,
	}
}

// Select transitions the session into the selected state around
// folder, enforcing the "selectedFolder != nil iff Selected" invariant.
func (s *Session) Select(folder *SelectedFolder) {
	s.SelectedFolder = folder
	s.State = Selected
}

// Unselect returns to the authenticated state, discarding folder
// context (used by CLOSE).
func (s *Session) Unselect() {
	s.SelectedFolder = nil
	if s.State == Selected {
		s.State = Auth
	}
}
