// Package negotiate implements the one-shot Buffered-vs-Synchronous mode
// agreement of spec §4.7/C7.
package negotiate

import (
	"math/rand"
	"time"

	"github.com/starlarkus/gblink-pokemon-web/pkg/relay"
)

// negotiationTimeout bounds the whole negotiation (§5 "Timeouts": "30 s
// for negotiation").
const negotiationTimeout = 30 * time.Second

const pollInterval = 50 * time.Millisecond

// Mode is the agreed section-exchange strategy (§4.6 Glossary).
type Mode uint8

const (
	ModeSynchronous = Mode(0x12)
	ModeBuffered    = Mode(0x85)
)

func (m Mode) String() string {
	if m == ModeBuffered {
		return "buffered"
	}

	return "synchronous"
}

// maxRounds caps the random-tiebreak loop; failing to converge defaults
// to Synchronous (§4.7 "Failure to converge after a fixed cap (10 rounds)
// defaults to Synchronous").
const maxRounds = 10

// PromptFunc asks the user whether to accept the peer's proposed mode,
// returning true to accept it. The Mediator supplies the real UI
// callback; tests can stub it.
type PromptFunc func(peerMode Mode) (accept bool)

// Negotiate runs the BUF/NEG exchange to agreement, returning the final
// Mode both sides use for every section exchange this session (§4.7).
//
// tag suffixes BUF/NEG with the generation-specific channel family (e.g.
// "BUF2"/"NEG2", §6.3).
func Negotiate(client *relay.Client, bufTag, negTag relay.Tag, ownMode Mode, prompt PromptFunc) Mode {
	client.SetOutbox(bufTag, []byte{0, uint8(ownMode)})

	peerMode, ok := waitForBuf(client, bufTag)

	if !ok || peerMode == ownMode {
		return ownMode
	}

	current := ownMode

	for round := 0; round < maxRounds; round++ {
		ownRoll := uint8(rand.Intn(256))

		if err := client.SendWithCounter(negTag, []byte{ownRoll}); err != nil {
			return Mode(0x12)
		}

		peerRoll, ok := waitForNeg(client, negTag)

		if !ok {
			continue
		}

		if peerRoll == ownRoll {
			// Ties re-draw (§4.7).
			continue
		}

		if ownRoll > peerRoll {
			// We win; our mode stands. Re-publish BUF so the peer's next
			// poll observes it unambiguously.
			client.SetOutbox(bufTag, []byte{0, uint8(current)})
			return current
		}

		// Peer won. Offer the user a chance to refuse.
		peerClaimedMode, ok := waitForBuf(client, bufTag)

		if !ok {
			peerClaimedMode = peerMode
		}

		accept := true

		if prompt != nil {
			accept = prompt(peerClaimedMode)
		}

		if accept {
			current = peerClaimedMode
		}

		client.SetOutbox(bufTag, []byte{0, uint8(current)})

		if current == peerClaimedMode {
			return current
		}

		// We refused; the peer must see our mode and a fresh tiebreak
		// round runs.
	}

	return ModeSynchronous
}

func waitForBuf(client *relay.Client, tag relay.Tag) (Mode, bool) {
	deadline := time.Now().Add(negotiationTimeout)

	for time.Now().Before(deadline) {
		if err := client.Pull(tag); err != nil {
			return 0, false
		}

		time.Sleep(pollInterval)

		v, ok := client.Peek(tag)

		if ok && len(v) >= 2 {
			return Mode(v[1]), true
		}
	}

	return 0, false
}

func waitForNeg(client *relay.Client, tag relay.Tag) (uint8, bool) {
	deadline := time.Now().Add(negotiationTimeout)

	for time.Now().Before(deadline) {
		if err := client.Pull(tag); err != nil {
			return 0, false
		}

		time.Sleep(pollInterval)

		body, ok := client.GetWithCounter(tag)

		if ok && len(body) >= 1 {
			return body[0], true
		}
	}

	return 0, false
}
