// Package trader implements the Trade Mediator (§4.8/C8): the
// per-generation trade state machine that drives a cartridge link through
// the Cable Club handshake, the section-exchange starting sequence, the
// trade-menu loop, and the post-trade party mutation, while relaying peer
// state through pkg/relay.
package trader

import (
	"log"

	"github.com/starlarkus/gblink-pokemon-web/pkg/data"
	"github.com/starlarkus/gblink-pokemon-web/pkg/negotiate"
	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
	"github.com/starlarkus/gblink-pokemon-web/pkg/relay"
)

// Mediator drives one trade session for one cartridge link connection
// (§4.8). It owns no concurrent state beyond what relay.Client itself
// synchronizes: the scheduling model is single-threaded and cooperative
// (§5 "Scheduling").
type Mediator struct {
	link  SerialPort
	peer  *relay.Client
	gen   pokemon.Generation
	index uint8 // X in tag families BUFX/NEGX/... (§6.3)

	tables *data.StaticTables

	// japanese marks this link's cartridge as a Japanese-region cart, so
	// the starting sequence expands/collapses the narrower Japanese name
	// fields and translates mail bodies (§4.5 "Japanese handling").
	japanese bool

	// stopTrade is the single cancellation flag exposed to the collaborating
	// UI (§5 "Cancellation"): every suspension point rechecks it.
	stopTrade bool

	// mode is the Synchronous/Buffered agreement from the Mode Negotiator
	// (§4.7), set once per link session.
	mode negotiate.Mode

	// blankTrade[own/peer] gate whether the next re-entry needs a fresh
	// full starting sequence or a cheaper subsequent sequence (§4.8.2).
	ownBlankTrade  bool
	peerBlankTrade bool

	// expectOwnMVS/expectPeerMVS track the post-trade "need-data" exchange
	// of §4.8.1 step 8.
	expectOwnMVS  bool
	expectPeerMVS bool

	// cachedPeerSections holds the last full peer party payload (all
	// sections concatenated) for buffered/ghost-trade reuse (§4.6
	// "Buffered mode").
	cachedPeerSections []byte
	havePeerSections   bool
}

// NewMediator builds a Mediator for one cartridge connection, generation,
// peer relay client, and the channel-family index used in its tag names
// (e.g. index=2 for Gen 2's BUF2/NEG2/CHC2/...). japanese marks the local
// cartridge as a Japanese-region cart (§4.5 "Japanese handling"); it has no
// effect on Gen 3, which has no region-dependent name-field width.
func NewMediator(link SerialPort, peer *relay.Client, gen pokemon.Generation, index uint8, tables *data.StaticTables, japanese bool) *Mediator {
	return &Mediator{
		link:           link,
		peer:           peer,
		gen:            gen,
		index:          index,
		tables:         tables,
		japanese:       japanese,
		ownBlankTrade:  true,
		peerBlankTrade: true,
	}
}

// Stop requests a graceful exit at the next suspension point (§5
// "Cancellation").
func (m *Mediator) Stop() {
	m.stopTrade = true
}

func (m *Mediator) tag(family string) relay.Tag {
	return relay.NewTag(family)
}

// Start runs the Mediator to completion: entering_room, sitting, one
// negotiation, then the starting_sequence/menu/end_trade loop until the
// link dies or Stop is called (§4.8 "States and their exits").
func (m *Mediator) Start() {
	if m.gen == pokemon.Gen3 {
		m.startGen3()
		return
	}

	log.Printf("client %d: entering room", m.link.ID())
	stepSequence(m.link, enteringRoomSend, enteringRoomAccept)

	log.Printf("client %d: sitting", m.link.ID())
	stepSequence(m.link, sittingSend, sittingAccept)

	m.mode = negotiate.Negotiate(m.peer, m.tag(m.bufTag()), m.tag(m.negTag()), negotiate.ModeSynchronous, nil)

	log.Printf("client %d: negotiated mode %s", m.link.ID(), m.mode)

	for !m.stopTrade && m.link.Alive() {
		party := m.runStartingSequence()

		if party == nil {
			break
		}

		if !m.runMenu(party) {
			break
		}

		log.Printf("client %d: end trade", m.link.ID())
		m.runEndTrade()
	}

	log.Printf("client %d: mediator stopped", m.link.ID())
}

func (m *Mediator) bufTag() string { return "BUF" + m.suffix() }
func (m *Mediator) negTag() string { return "NEG" + m.suffix() }

// suffix is the X in tag families BUFX/NEGX/CHCX/... (§6.3): the
// mediator's configured channel index, letting several link sessions of
// the same generation share one relay connection on distinct tags.
func (m *Mediator) suffix() string {
	return string(rune('0' + m.index))
}

// runEndTrade drains sentinels until the cartridge acknowledges exit
// (§4.8 "send 0x7F until cartridge returns 0x7F, then until it returns
// 0x00").
func (m *Mediator) runEndTrade() {
	cancel := Gen1Cancel

	if m.gen == pokemon.Gen2 {
		cancel = Gen2Cancel
	}

	for m.link.Write(cancel); ; m.link.Write(cancel) {
		if m.link.Read() == cancel {
			break
		}
	}

	for m.link.Write(cancel); ; m.link.Write(cancel) {
		if m.link.Read() == 0x00 {
			break
		}
	}

	m.ownBlankTrade = true
	m.peerBlankTrade = true
}
