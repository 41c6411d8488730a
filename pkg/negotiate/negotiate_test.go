package negotiate

import (
	"net"
	"testing"

	"github.com/starlarkus/gblink-pokemon-web/pkg/relay"
)

func TestNegotiateAgreesImmediatelyWhenModesMatch(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	own := relay.New(a)
	peer := relay.New(b)

	bufTag := relay.NewTag("BUF1")
	negTag := relay.NewTag("NEG1")

	peer.SetOutbox(bufTag, []byte{0, uint8(ModeSynchronous)})

	got := Negotiate(own, bufTag, negTag, ModeSynchronous, nil)

	if got != ModeSynchronous {
		t.Errorf("got %s, want %s", got, ModeSynchronous)
	}
}

// TestNegotiateConflictConverges runs both sides of the tiebreak loop for
// real over a connected pair of relay clients: one side proposes
// Synchronous, the other Buffered, and both always accept the peer's
// offer. The protocol must land both sides on the same final mode.
func TestNegotiateConflictConverges(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	alice := relay.New(a)
	bob := relay.New(b)

	bufTag := relay.NewTag("BUF1")
	negTag := relay.NewTag("NEG1")

	alwaysAccept := func(peerMode Mode) bool { return true }

	aliceResult := make(chan Mode, 1)
	bobResult := make(chan Mode, 1)

	go func() { aliceResult <- Negotiate(alice, bufTag, negTag, ModeSynchronous, alwaysAccept) }()
	go func() { bobResult <- Negotiate(bob, bufTag, negTag, ModeBuffered, alwaysAccept) }()

	got1 := <-aliceResult
	got2 := <-bobResult

	if got1 != got2 {
		t.Errorf("sides disagreed on final mode: alice=%s, bob=%s", got1, got2)
	}
}

func TestModeString(t *testing.T) {
	if ModeSynchronous.String() != "synchronous" {
		t.Errorf("got %q, want synchronous", ModeSynchronous.String())
	}

	if ModeBuffered.String() != "buffered" {
		t.Errorf("got %q, want buffered", ModeBuffered.String())
	}
}
