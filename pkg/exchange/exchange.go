// Package exchange implements the per-section exchange sub-protocol of
// spec §4.6/C6: the cartridge preamble handshake, the synchronous
// (interleaved) byte-for-byte mediation with the peer, and the buffered
// (local) feed from a previously received peer section.
package exchange

import (
	"time"

	"github.com/starlarkus/gblink-pokemon-web/pkg/relay"
)

// CartridgeLink is the byte-exchange primitive of §4.1/C1. Every write
// produces exactly one read; a timed-out read returns NoData.
type CartridgeLink interface {
	Exchange(out uint8) uint8
}

// NoData is the "no data" sentinel a timed-out cartridge read returns
// (§4.1).
const NoData = uint8(0x00)

// KeepAlive is the value the cartridge (and the peer, over SNG) uses to
// mean "not data yet, keep polling" (§4.6 "A position i with value 0xFE
// received from the peer is treated as keep-alive").
const KeepAlive = uint8(0xFE)

// poisonByte is the one Gen 2 value that must never appear unescaped on
// the SNG wire (§7(d), §9 "poison-value workaround").
const poisonByte = uint8(0xFD)

// Poisoned reports whether the given section index and position fall
// inside the cargo-culted Gen 2 "poison" ranges (positions 441/72/171
// holding 0xFD, §7(d)): SNG-outbound 0xFD at those exact spots is
// rewritten to 0xFF before it reaches the peer. This never touches the
// cartridge-facing byte, only the wire copy sent over SNG.
func Poisoned(sectionIndex, pos int, val uint8) bool {
	if val != poisonByte {
		return false
	}

	switch sectionIndex {
	case 1:
		return pos == 441
	case 0:
		return pos == 72 || pos == 171
	default:
		return false
	}
}

// RunPreamble implements §4.6 "Per-section preamble": send starter until
// the cartridge echoes starter, then keep sending starter until the
// response changes — that first non-starter byte is the first payload
// byte, returned as firstByte.
func RunPreamble(link CartridgeLink, starter uint8) (firstByte uint8) {
	for link.Exchange(starter) != starter {
	}

	for {
		b := link.Exchange(starter)

		if b != starter {
			return b
		}
	}
}

// escapeOutbound replaces 0xFE with 0xFF before a byte is placed on the
// SNG wire (§4.6: "Replace 0xFE outgoing bytes with 0xFF in the SNG
// payload (never on the cartridge wire)"), and applies the poison-byte
// rewrite of §7(d).
func escapeOutbound(sectionIndex, pos int, val uint8) uint8 {
	if val == KeepAlive {
		return 0xFF
	}

	if Poisoned(sectionIndex, pos, val) {
		return 0xFF
	}

	return val
}

// Sync drives one section through the interleaved synchronous protocol
// (§4.6 "Synchronous (interleaved) mode"): for each position, our byte is
// broadcast to the peer over sngTag while the peer's corresponding byte
// (once known) is fed to the cartridge. It returns both the bytes our own
// cartridge produced and the full peer section, each length bytes long.
//
// firstOwnByte is the payload byte already consumed by RunPreamble.
func Sync(link CartridgeLink, client *relay.Client, sngTag relay.Tag, sectionIndex, length int, firstOwnByte uint8) (own, peerOut []byte) {
	peer := make([]byte, length)
	peerKnown := make([]bool, length)
	ownByte := make([]byte, length)

	ownByte[0] = firstOwnByte

	newFormat := true
	formatDecided := false

	for i := 0; i < length; {
		// Broadcast our known bytes and request missing peer positions,
		// redundantly packing several slots per frame.
		slots := make([]Slot, 0, NewFormatSlots)

		for j := i; j < length && len(slots) < NewFormatSlots; j++ {
			slots = append(slots, Slot{
				Pos:   uint16(j),
				Val:   escapeOutbound(sectionIndex, j, ownByte[j]),
				Extra: uint8(sectionIndex),
			})
		}

		frameBytes := NewFormatBytes

		if formatDecided && !newFormat {
			frameBytes = OldFormatBytes

			if len(slots) > OldFormatSlots {
				slots = slots[:OldFormatSlots]
			}
		}

		_ = client.Send(sngTag, EncodeSlots(slots, frameBytes))

		_ = client.Pull(sngTag)

		time.Sleep(5 * time.Millisecond)

		if raw, ok := client.Peek(sngTag); ok && len(raw) > 0 {
			if !formatDecided {
				newFormat = IsNewFormat(raw)
				formatDecided = true
			}

			for _, s := range DecodeSlots(raw) {
				if int(s.Pos) >= length {
					// Completion marker: the peer has finished this
					// section (§4.6 "Positions >= length are treated as
					// completion markers").
					continue
				}

				if s.Val == KeepAlive {
					continue
				}

				if !peerKnown[s.Pos] {
					peerKnown[s.Pos] = true
					peer[s.Pos] = s.Val
				}
			}
		}

		if i < length && peerKnown[i] {
			// Feed the cartridge now that position i's peer byte is
			// known: write peer_i, read ownByte_{i+1}.
			if i+1 < length {
				ownByte[i+1] = link.Exchange(peer[i])
			} else {
				link.Exchange(peer[i])
			}

			i++
		}
	}

	return ownByte, peer
}

// Rendezvous runs the pre-section "I am ready for section N" sentinel
// exchange (§4.6 "A pre-section rendezvous phase"): send the sentinel on
// sngTag repeatedly until the peer echoes it back, or until the peer is
// already observed sending data-bearing slots for section N (implicit
// sync).
func Rendezvous(client *relay.Client, sngTag relay.Tag, sectionIndex int) {
	sentinel := []byte{0xFF, 0xFF, 0xFF, uint8(sectionIndex)}

	deadline := time.Now().Add(10 * time.Second)

	for time.Now().Before(deadline) {
		_ = client.Send(sngTag, sentinel)
		_ = client.Pull(sngTag)

		time.Sleep(10 * time.Millisecond)

		raw, ok := client.Peek(sngTag)

		if !ok {
			continue
		}

		for _, s := range DecodeSlots(raw) {
			if int(s.Extra) == sectionIndex {
				return
			}
		}
	}
}

// ShouldSkipMailSync implements §4.6 "Mail-section shortcut": if neither
// party carries a mail-bearing item on any slot, the mail section is run
// buffered regardless of the negotiated global mode.
func ShouldSkipMailSync(ownHasMail, peerHasMail bool) bool {
	return !ownHasMail && !peerHasMail
}

// Buffered feeds previously-cached peer section bytes directly to the
// cartridge, one position at a time, bypassing per-byte peer I/O (§4.6
// "Buffered mode"). It returns the bytes our cartridge produced in
// response (our own section, as seen by the cartridge).
func Buffered(link CartridgeLink, peerData []byte, firstOwnByte uint8) []byte {
	length := len(peerData)

	own := make([]byte, length)

	if length == 0 {
		return own
	}

	own[0] = firstOwnByte

	for i := 0; i < length; i++ {
		next := link.Exchange(peerData[i])

		if i+1 < length {
			own[i+1] = next
		}
	}

	return own
}
