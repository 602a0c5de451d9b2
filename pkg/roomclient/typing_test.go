package roomclient

import "testing"

func TestClassifyTyping(t *testing.T) {
	cases := []struct {
		name       string
		selfTyping bool
		peerTyping bool
		want       TypingState
	}{
		{name: "both idle", want: TypingNeutral},
		{name: "self only", selfTyping: true, want: TypingSelf},
		{name: "peer only", peerTyping: true, want: TypingPeer},
		{name: "both typing", selfTyping: true, peerTyping: true, want: TypingNeutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyTyping(tc.selfTyping, tc.peerTyping); got != tc.want {
				t.Fatalf("ClassifyTyping(%v, %v) = %v, want %v", tc.selfTyping, tc.peerTyping, got, tc.want)
			}
		})
	}
}

func TestTypingStateString(t *testing.T) {
	if TypingNeutral.String() != "neutral" || TypingSelf.String() != "self" || TypingPeer.String() != "peer" {
		t.Fatalf("unexpected display names: %s %s %s", TypingNeutral, TypingSelf, TypingPeer)
	}
}

func TestKnownReaction(t *testing.T) {
	for _, r := range Reactions {
		if !KnownReaction(r) {
			t.Errorf("catalog reaction %q not recognized", r)
		}
	}
	if KnownReaction("💀") {
		t.Error("off-catalog reaction accepted")
	}
	if KnownReaction("") {
		t.Error("empty reaction accepted")
	}
}
