package trader

import (
	"log"
	"time"

	"github.com/starlarkus/gblink-pokemon-web/pkg/exchange"
	"github.com/starlarkus/gblink-pokemon-web/pkg/negotiate"
	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
	"github.com/starlarkus/gblink-pokemon-web/pkg/relay"
	"github.com/starlarkus/gblink-pokemon-web/pkg/serial"
)

// sectionStarter is the preamble byte sections 0-2 are prefixed with, and
// mailSectionStarter the one the Gen 2 mail section is prefixed with (§4.6
// "Per-section preamble").
const (
	sectionStarter     = uint8(0xFD)
	mailSectionStarter = uint8(0x20)
)

// activeParty is the generation-agnostic view of one trade session's
// decoded party data the menu loop needs: the raw per-section bytes (used
// to rebroadcast FLL payloads and re-marshal after mutation) plus the
// generation-specific parsed struct.
type activeParty struct {
	gen  pokemon.Generation
	g1   *pokemon.PartyGen1
	g2   *pokemon.PartyGen2
	mail *pokemon.MailSection

	sections [][]byte
}

func (m *Mediator) sectionLengths() []int {
	if m.gen == pokemon.Gen2 {
		return pokemon.Gen2SectionLengths
	}

	return pokemon.Gen1SectionLengths
}

func (m *Mediator) fllTag() string {
	if m.gen == pokemon.Gen2 {
		return "FLL2"
	}

	return "FLL1"
}

func (m *Mediator) sngTag() relay.Tag {
	if m.gen == pokemon.Gen2 {
		return m.tag("SNG2")
	}

	return m.tag("SNG1")
}

// mailSectionIndex is the Gen 2 mail section's position within
// Gen2SectionLengths; Gen 1 has no mail section.
const mailSectionIndex = 3

// japaneseEgress translates a cached peer section buffer (always
// International-layout/common-encoded, since every mediator normalizes its
// own captures before caching) into the narrower wire form our own
// Japanese cartridge expects to receive, just before it is fed to the
// cartridge (§4.5 "Japanese handling"). Buffered mode only: the
// synchronous interleaved exchange assumes a fixed International section
// length per position and is not restructured for the narrower Japanese
// wire layout.
func (m *Mediator) japaneseEgress(sectionIndex int, buf []byte) []byte {
	if !m.japanese || m.gen == pokemon.Gen3 {
		return buf
	}

	switch sectionIndex {
	case 1:
		return pokemon.CollapseJapaneseNames(buf, m.gen)
	case mailSectionIndex:
		if m.gen == pokemon.Gen2 {
			table := m.mailTable(false)
			return pokemon.TranslateMailSection(buf, table)
		}
	}

	return buf
}

// japaneseIngest is the inverse of japaneseEgress, applied to the bytes our
// own cartridge just produced so that everything cached or published from
// this point on is in the common International/common-encoded form the
// rest of the mediator assumes.
func (m *Mediator) japaneseIngest(sectionIndex int, buf []byte) []byte {
	if !m.japanese || m.gen == pokemon.Gen3 {
		return buf
	}

	switch sectionIndex {
	case 1:
		return pokemon.ExpandJapaneseNames(buf, m.gen)
	case mailSectionIndex:
		if m.gen == pokemon.Gen2 {
			table := m.mailTable(true)
			return pokemon.TranslateMailSection(buf, table)
		}
	}

	return buf
}

// mailTable picks the Japanese<->International mail-body conversion
// direction: toEnglish selects MailConversionJPToEn (ingest), otherwise
// MailConversionEnToJP (egress). Returns nil (pass-through) if the tables
// were not loaded (§4.3 "degrade gracefully").
func (m *Mediator) mailTable(toEnglish bool) map[uint8]uint8 {
	if m.tables == nil {
		return nil
	}

	if toEnglish {
		return m.tables.MailConversionJPToEn
	}

	return m.tables.MailConversionEnToJP
}

// runStartingSequence drives "Version/random exchange; then sections
// 0..K" (§4.8 state table). It returns the parsed party once every
// section has been exchanged, or nil if the link died. The exchanged
// sections are not run through the validator.
func (m *Mediator) runStartingSequence() *activeParty {
	cart := serial.NewCartridgeLink(m.link)

	lengths := m.sectionLengths()

	ownSections := make([][]byte, len(lengths))
	peerSections := make([][]byte, len(lengths))

	useBuffered := m.mode == negotiate.ModeBuffered

	var cachedPeer [][]byte

	if useBuffered && m.havePeerSections {
		cachedPeer = splitSections(m.cachedPeerSections, lengths)
	}

	for i, length := range lengths {
		if !m.link.Alive() || m.stopTrade {
			return nil
		}

		starter := sectionStarter

		if m.gen == pokemon.Gen2 && i == mailSectionIndex {
			starter = mailSectionStarter
		}

		firstByte := exchange.RunPreamble(cart, starter)

		if useBuffered && cachedPeer != nil {
			feed := m.japaneseEgress(i, cachedPeer[i])

			own := exchange.Buffered(cart, feed, firstByte)

			ownSections[i] = m.japaneseIngest(i, own)
			peerSections[i] = cachedPeer[i]
			continue
		}

		own, peer := exchange.Sync(cart, m.peer, m.sngTag(), i, length, firstByte)
		ownSections[i] = own
		peerSections[i] = peer
	}

	if useBuffered {
		m.publishFLL(ownSections)

		if fresh, ok := m.pullFLL(lengths); ok {
			peerSections = fresh
		}
	}

	m.cachedPeerSections = concatSections(peerSections)
	m.havePeerSections = true

	ap := m.parseParty(peerSections)

	m.runNeedDataMoveRefresh(ap)

	return ap
}

// runNeedDataMoveRefresh implements the MVSX leg of §4.8.1 step 8: if the
// last trade flagged that our incoming Pokémon needs a move/PP refresh
// (it evolved or learned a move), we wait for the peer's MVSX before
// trusting its last slot; symmetrically, if the peer is waiting on us we
// publish ours.
func (m *Mediator) runNeedDataMoveRefresh(ap *activeParty) {
	if ap == nil {
		return
	}

	if m.expectPeerMVS {
		if moves, pp, ok := m.waitMVS(); ok {
			m.applyMoveRefresh(ap, moves, pp)
		}

		m.expectPeerMVS = false
	}

	if m.expectOwnMVS {
		moves, pp := m.lastSlotMoves(ap)

		payload := append(append([]uint8{}, moves[:]...), pp[:]...)

		_ = m.peer.SendWithCounter(m.tag(m.mvsTag()), payload)

		m.expectOwnMVS = false
	}
}

func (m *Mediator) waitMVS() (moves [4]uint8, pp [4]uint8, ok bool) {
	tag := m.tag(m.mvsTag())

	for i := 0; i < pollAttempts; i++ {
		_ = m.peer.Pull(tag)

		sleepPoll()

		body, got := m.peer.GetWithCounter(tag)

		if got && len(body) >= 8 {
			copy(moves[:], body[0:4])
			copy(pp[:], body[4:8])

			return moves, pp, true
		}
	}

	return moves, pp, false
}

// clampSlot keeps a party-count-derived index inside [0, slots).
func clampSlot(i, slots int) int {
	if i < 0 {
		return 0
	}

	if i >= slots {
		return slots - 1
	}

	return i
}

func (m *Mediator) applyMoveRefresh(ap *activeParty, moves, pp [4]uint8) {
	switch m.gen {
	case pokemon.Gen2:
		if ap.g2 == nil {
			return
		}

		last := clampSlot(int(ap.g2.Header.PartyCount)-1, len(ap.g2.Party))
		rec := ap.g2.CoreAt(last)
		rec.Moves = moves
		rec.MovesPowerPoints = pp
	default:
		if ap.g1 == nil {
			return
		}

		last := clampSlot(int(ap.g1.Header.PartyCount)-1, len(ap.g1.Party))
		rec := ap.g1.CoreAt(last)
		rec.Moves = moves
		rec.MovesPowerPoints = pp
	}
}

func (m *Mediator) lastSlotMoves(ap *activeParty) (moves [4]uint8, pp [4]uint8) {
	switch m.gen {
	case pokemon.Gen2:
		if ap.g2 == nil {
			return
		}

		last := clampSlot(int(ap.g2.Header.PartyCount)-1, len(ap.g2.Party))
		rec := ap.g2.CoreAt(last)

		return rec.Moves, rec.MovesPowerPoints
	default:
		if ap.g1 == nil {
			return
		}

		last := clampSlot(int(ap.g1.Header.PartyCount)-1, len(ap.g1.Party))
		rec := ap.g1.CoreAt(last)

		return rec.Moves, rec.MovesPowerPoints
	}
}

func splitSections(concat []byte, lengths []int) [][]byte {
	out := make([][]byte, len(lengths))
	off := 0

	for i, l := range lengths {
		if off+l > len(concat) {
			return nil
		}

		out[i] = concat[off : off+l]
		off += l
	}

	return out
}

func concatSections(sections [][]byte) []byte {
	total := 0

	for _, s := range sections {
		total += len(s)
	}

	out := make([]byte, 0, total)

	for _, s := range sections {
		out = append(out, s...)
	}

	return out
}

func (m *Mediator) publishFLL(sections [][]byte) {
	m.peer.SetOutbox(m.tag(m.fllTag()), concatSections(sections))
}

func (m *Mediator) pullFLL(lengths []int) ([][]byte, bool) {
	_ = m.peer.Pull(m.tag(m.fllTag()))

	time.Sleep(50 * time.Millisecond)

	raw, ok := m.peer.Peek(m.tag(m.fllTag()))

	if !ok {
		return nil, false
	}

	sections := splitSections(raw, lengths)

	return sections, sections != nil
}

// parseParty restores the 0xFE patch list and decodes the party section
// into the generation-specific struct. The section bytes are decoded as
// received; no validator table is run over them here.
func (m *Mediator) parseParty(sections [][]byte) *activeParty {
	ap := &activeParty{gen: m.gen, sections: sections}

	partyBuf := append([]byte(nil), sections[1]...)

	patchList := pokemon.PatchList(sections[2])
	pokemon.RestorePatches(partyBuf, patchList.Parse(), 0)

	switch m.gen {
	case pokemon.Gen2:
		p, err := pokemon.ParsePartyGen2(partyBuf)

		if err != nil {
			log.Printf("client %d: parse party: %s", m.link.ID(), err)
			return nil
		}

		ap.g2 = p

		if len(sections) > 3 {
			// The mail section shares the Pokémon section's one patch-list
			// buffer (§3.1 lists a single 197-byte patch section for the
			// whole four-section Gen 2 transfer, not one per section).
			mailBuf := append([]byte(nil), sections[3]...)
			pokemon.RestorePatches(mailBuf, patchList.Parse(), 0)

			if mail, err := pokemon.ParseMailSection(mailBuf); err == nil {
				ap.mail = mail
			}
		}
	default:
		p, err := pokemon.ParsePartyGen1(partyBuf)

		if err != nil {
			log.Printf("client %d: parse party: %s", m.link.ID(), err)
			return nil
		}

		ap.g1 = p
	}

	return ap
}
