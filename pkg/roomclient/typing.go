package roomclient

// TypingState is the combined display classification of the two typing
// flags.
type TypingState int

const (
	// TypingNeutral covers both-idle and both-typing; the layout is the
	// same in either case.
	TypingNeutral TypingState = iota
	// TypingSelf means only the local user is typing.
	TypingSelf
	// TypingPeer means only the peer is typing.
	TypingPeer
)

// String returns the display name of a typing state.
func (s TypingState) String() string {
	switch s {
	case TypingSelf:
		return "self"
	case TypingPeer:
		return "peer"
	default:
		return "neutral"
	}
}

// ClassifyTyping folds the two typing flags into one display state. It is
// a pure function, re-evaluated on every flag change.
func ClassifyTyping(selfTyping, peerTyping bool) TypingState {
	switch {
	case selfTyping && !peerTyping:
		return TypingSelf
	case peerTyping && !selfTyping:
		return TypingPeer
	default:
		return TypingNeutral
	}
}

// TypeDirection is the cue for a peer content change.
type TypeDirection int

const (
	// TypedForward means the peer's content grew or stayed level.
	TypedForward TypeDirection = iota
	// TypedBackward means the peer's content shrank.
	TypedBackward
)
