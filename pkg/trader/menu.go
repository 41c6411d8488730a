package trader

import (
	"log"

	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
	"github.com/starlarkus/gblink-pokemon-web/pkg/validator"
)

// needData/noNeedData are the ASKX payload bytes of §4.8.1 step 8.
const (
	needData   = uint8(0x72)
	noNeedData = uint8(0x43)
)

func (m *Mediator) chcTag() string { return "CHC" + m.suffix() }
func (m *Mediator) acpTag() string { return "ACP" + m.suffix() }
func (m *Mediator) sucTag() string { return "SUC" + m.suffix() }
func (m *Mediator) askTag() string { return "ASK" + m.suffix() }
func (m *Mediator) mvsTag() string { return "MVS" + m.suffix() }

func (m *Mediator) selectRange() (first, last, cancel, decline, accept uint8) {
	if m.gen == pokemon.Gen2 {
		return Gen2SelectFirst, Gen2SelectLast, Gen2Cancel, Gen2Decline, Gen2Accept
	}

	return Gen1SelectFirst, Gen1SelectLast, Gen1Cancel, Gen1Decline, Gen1Accept
}

// runMenu implements §4.8.1 "Trade-menu (Gen 1/2)" for one trade cycle:
// selection, broadcast, peer selection, forward, accept/decline, success,
// post-trade mutation and need-data exchange. It returns false only when
// the link has died; a cancellation returns true so the caller loops back
// through end_trade.
func (m *Mediator) runMenu(ap *activeParty) bool {
	first, last, cancelByte, declineByte, acceptByte := m.selectRange()

	// Step 1: own selection, debounced to stableReads identical cartridge
	// reads, ignoring 0xFE/0x00.
	selection := waitStable(m.link.Read, func(b uint8) bool {
		return b == cancelByte || (b >= first && b <= last)
	})

	if !m.link.Alive() {
		return false
	}

	if selection == cancelByte {
		log.Printf("client %d: trade canceled from menu", m.link.ID())
		return true
	}

	slot := int(selection - first)

	// Step 2: broadcast full Pokémon data for the selected slot.
	record, err := m.marshalSlot(ap, slot)

	if err != nil {
		log.Printf("client %d: marshal selection: %s", m.link.ID(), err)
		return true
	}

	if err := m.peer.SendWithCounter(m.tag(m.chcTag()), append([]uint8{selection}, record...)); err != nil {
		log.Printf("client %d: send CHC: %s", m.link.ID(), err)
		return true
	}

	// Step 3: peer selection, sanity-checked with the single-Pokémon
	// validator.
	peerSelection, peerRecord, ok := m.waitCHC()

	if !ok {
		return true
	}

	checkCtx := validator.NewCheckContext(m.tables, m.gen)
	checkCtx.SanityChecksEnabled = m.tables != nil
	validator.Run(peerRecord, validator.SinglePokemonTable(m.gen), checkCtx)

	// Step 4: forward peer's selection byte to the cartridge, then drain
	// until it acknowledges (0x00) then becomes ready (0xFE).
	m.link.Write(peerSelection)

	for m.link.Read() != 0x00 {
		m.link.Write(peerSelection)
	}

	for m.link.Read() != 0xFE {
		m.link.Write(peerSelection)
	}

	// Step 5: accept/decline.
	ownDecision := waitStable(m.link.Read, func(b uint8) bool {
		return b == acceptByte || b == declineByte
	})

	if !m.link.Alive() {
		return false
	}

	if err := m.peer.SendWithCounter(m.tag(m.acpTag()), []uint8{ownDecision}); err != nil {
		log.Printf("client %d: send ACP: %s", m.link.ID(), err)
		return true
	}

	peerDecision, ok := m.waitByteTag(m.acpTag())

	if !ok {
		return true
	}

	m.link.Write(peerDecision)

	if ownDecision != acceptByte || peerDecision != acceptByte {
		log.Printf("client %d: trade declined", m.link.ID())
		return true
	}

	// Step 6: success.
	waitStable(m.link.Read, isSuccessByte)

	if !m.link.Alive() {
		return false
	}

	successByte := waitStable(m.link.Read, isSuccessByte)

	if err := m.peer.SendWithCounter(m.tag(m.sucTag()), []uint8{successByte}); err != nil {
		log.Printf("client %d: send SUC: %s", m.link.ID(), err)
	}

	m.link.Write(successByte)

	stableCount := 0
	var last0 uint8 = 1

	for stableCount < 5 {
		m.link.Write(0x00)
		b := m.link.Read()

		if b == last0 {
			stableCount++
		} else {
			stableCount = 1
			last0 = b
		}
	}

	// Step 7: post-trade party mutation.
	m.applyMutation(ap, slot, peerRecord)

	// Step 8: need-data exchange.
	m.runNeedData(ap, slot)

	log.Printf("client %d: trade complete", m.link.ID())

	return true
}

// waitCHC polls CHCX until a counter-advancing frame arrives, returning
// the selection byte and the raw Pokémon record that followed it.
func (m *Mediator) waitCHC() (selection uint8, record []byte, ok bool) {
	tag := m.tag(m.chcTag())

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

func (m *Mediator) waitByteTag(family string) (uint8, bool) {
	tag := m.tag(family)

	for i := 0; i < pollAttempts; i++ {
		_ = m.peer.Pull(tag)

		sleepPoll()

		body, got := m.peer.GetWithCounter(tag)

		if got && len(body) >= 1 {
			return body[0], true
		}
	}

	return 0, false
}
