package trader

import (
	"log"

	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
	"github.com/starlarkus/gblink-pokemon-web/pkg/serial"
)

// Gen 3 trade-menu byte values (§4.8.3 "The trade menu uses a distinct
// framing with in_party_trading|done. Selection values are 0x80..0x85
// with 0x8F cancel; accept/decline pair per round [0xA2,0xA1] then
// [0xB2,0xB1]; success sequence is seven rounds of 0x90..0x95,0x9C with
// 0x9F for failure").
const (
	gen3SelectFirst = uint8(0x80)
	gen3SelectLast  = uint8(0x85)
	gen3Cancel      = uint8(0x8F)

	gen3AcceptRound1 = uint8(0xA2)
	gen3DeclineRound1 = uint8(0xA1)
	gen3AcceptRound2 = uint8(0xB2)
	gen3DeclineRound2 = uint8(0xB1)

	gen3SuccessLast = uint8(0x9C)
	gen3Failure     = uint8(0x9F)
)

var gen3SuccessRounds = []uint8{0x90, 0x91, 0x92, 0x93, 0x94, 0x95, gen3SuccessLast}

// gen3Exchange drives one in_party_trading byte through a 32-bit control
// word, reusing Exchange32 rather than the plain byte Exchange the
// earlier generations use (§4.1 "32-bit word exchange with the
// cartridge").
func gen3Exchange(cart *serial.CartridgeLink, out uint8) uint8 {
	word := gen3FlagInPartyTrading | uint32(out)

	return uint8(cart.Exchange32(word))
}

// waitStable3 is the 32-bit-word analogue of waitStable: it keeps writing
// filler while waiting for stableReads consecutive identical, valid
// responses (§4.8.3 "confirmed only after 10 consecutive identical
// reads").
func waitStable3(cart *serial.CartridgeLink, filler uint8, valid func(uint8) bool) uint8 {
	var last uint8
	count := 0

	for {
		b := gen3Exchange(cart, filler)

		if !valid(b) {
			count = 0
			continue
		}

		if b == last {
			count++
		} else {
			last = b
			count = 1
		}

		if count >= stableReads {
			return last
		}
	}
}

// runMenu3 implements the Gen 3 trade-menu cycle (§4.8.3): selection,
// CH3S broadcast, peer selection via CH3S, accept/decline over two
// rounds (A3S1/A3S2), and a seven-round success handshake (S3S1..S3S7).
func (m *Mediator) runMenu3(ownSection []byte) bool {
	cart := serial.NewCartridgeLink(m.link)

	selection := waitStable3(cart, 0x00, func(b uint8) bool {
		return b == gen3Cancel || (b >= gen3SelectFirst && b <= gen3SelectLast)
	})

	if !m.link.Alive() {
		return false
	}

	if selection == gen3Cancel {
		log.Printf("client %d: gen3 trade canceled from menu", m.link.ID())
		return true
	}

	slot := int(selection - gen3SelectFirst)

	record := m.marshalSlot3(ownSection, slot)

	if err := m.peer.SendWithCounter(m.tag("CH3S"), append([]uint8{selection}, record...)); err != nil {
		log.Printf("client %d: send CH3S: %s", m.link.ID(), err)
		return true
	}

	peerSelection, peerRecord, ok := m.waitCH3S()

	if !ok {
		return true
	}

	gen3Exchange(cart, peerSelection)

	ownAccept1 := waitStable3(cart, 0x00, func(b uint8) bool {
		return b == gen3AcceptRound1 || b == gen3DeclineRound1
	})

	if !m.link.Alive() {
		return false
	}

	if err := m.peer.SendWithCounter(m.tag("A3S1"), []uint8{ownAccept1}); err != nil {
		return true
	}

	peerAccept1, ok := m.waitByteTag("A3S1")

	if !ok {
		return true
	}

	gen3Exchange(cart, peerAccept1)

	if ownAccept1 != gen3AcceptRound1 || peerAccept1 != gen3AcceptRound1 {
		log.Printf("client %d: gen3 trade declined (round 1)", m.link.ID())
		return true
	}

	ownAccept2 := waitStable3(cart, 0x00, func(b uint8) bool {
		return b == gen3AcceptRound2 || b == gen3DeclineRound2
	})

	if err := m.peer.SendWithCounter(m.tag("A3S2"), []uint8{ownAccept2}); err != nil {
		return true
	}

	peerAccept2, ok := m.waitByteTag("A3S2")

	if !ok {
		return true
	}

	gen3Exchange(cart, peerAccept2)

	if ownAccept2 != gen3AcceptRound2 || peerAccept2 != gen3AcceptRound2 {
		log.Printf("client %d: gen3 trade declined (round 2)", m.link.ID())
		return true
	}

	for i, want := range gen3SuccessRounds {
		waitStable3(cart, 0x00, func(b uint8) bool { return b == want || b == gen3Failure })

		tag := "S3S" + string(rune('1'+i))

		if err := m.peer.SendWithCounter(m.tag(tag), []uint8{want}); err != nil {
			return true
		}

		peerByte, ok := m.waitByteTag(tag)

		if !ok {
			return true
		}

		gen3Exchange(cart, peerByte)
	}

	m.logGen3Checksum(peerRecord)

	log.Printf("client %d: gen3 trade complete (slot %d)", m.link.ID(), slot)

	return true
}

// logGen3Checksum reports a checksum-invalid peer record (§7(c)
// "Checksum-invalid (Gen 3): record flagged invalid; still parsed but
// refused at the menu with an informational log"). The trade itself is
// not blocked here; this is advisory only.
func (m *Mediator) logGen3Checksum(raw []byte) {
	rec, err := pokemon.ParseRecordGen3(raw)

	if err != nil {
		return
	}

	d, err := pokemon.DecodeGen3(rec)

	if err != nil {
		log.Printf("client %d: gen3 peer record could not be decoded: %s", m.link.ID(), err)
		return
	}

	if !d.Valid {
		log.Printf("client %d: gen3 peer record failed checksum", m.link.ID())
	}
}

func (m *Mediator) marshalSlot3(ownSection []byte, slot int) []byte {
	const recordSize = 100

	off := slot * recordSize

	if off+recordSize > len(ownSection) {
		return make([]byte, recordSize)
	}

	return append([]byte(nil), ownSection[off:off+recordSize]...)
}

func (m *Mediator) waitCH3S() (selection uint8, record []byte, ok bool) {
	tag := m.tag("CH3S")

	for i := 0; i < pollAttempts; i++ {
		_ = m.peer.Pull(tag)

		sleepPoll()

		body, got := m.peer.GetWithCounter(tag)

		if got && len(body) >= 1 {
			return body[0], body[1:], true
		}
	}

	return 0, nil, false
}

// runEndTrade3 drains the cartridge back to a quiescent state after a
// Gen 3 cycle (§4.8 "end_trade": drain sentinels until the cartridge
// acknowledges exit").
func (m *Mediator) runEndTrade3() {
	cart := serial.NewCartridgeLink(m.link)

	for gen3Exchange(cart, gen3Cancel) != gen3Cancel {
	}

	for gen3Exchange(cart, 0x00) != 0x00 {
	}
}
