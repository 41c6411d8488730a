package trader

import (
	"fmt"

	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
)

// chcPayloadGen1/Gen2 are the wire layout of a CHCX/CH3S-style full
// Pokémon transfer: the core record plus its OT name and nickname (§4.8.1
// step 2 "full_pokemon_data(selection)").
type chcPayloadGen1 struct {
	Record   pokemon.RecordGen1
	OT       pokemon.Name
	Nickname pokemon.Name
}

type chcPayloadGen2 struct {
	Record   pokemon.RecordGen2
	OT       pokemon.Name
	Nickname pokemon.Name
}

// marshalSlot serializes the Pokémon at the given party slot for a CHCX
// broadcast.
func (m *Mediator) marshalSlot(ap *activeParty, slot int) ([]byte, error) {
	switch m.gen {
	case pokemon.Gen2:
		if ap.g2 == nil || slot < 0 || slot >= len(ap.g2.Party) {
			return nil, fmt.Errorf("trader: slot %d out of range", slot)
		}

		return pokemon.Marshal(&chcPayloadGen2{
			Record:   *ap.g2.CoreAt(slot),
			OT:       *ap.g2.OTAt(slot),
			Nickname: *ap.g2.NicknameAt(slot),
		})
	default:
		if ap.g1 == nil || slot < 0 || slot >= len(ap.g1.Party) {
			return nil, fmt.Errorf("trader: slot %d out of range", slot)
		}

		return pokemon.Marshal(&chcPayloadGen1{
			Record:   *ap.g1.CoreAt(slot),
			OT:       *ap.g1.OTAt(slot),
			Nickname: *ap.g1.NicknameAt(slot),
		})
	}
}

// applyMutation implements §4.8.1 step 7: reorder our own party locally
// from the cached peer data, moving the traded slot to the end and
// overwriting it with the peer's incoming record, with no additional
// section exchange.
func (m *Mediator) applyMutation(ap *activeParty, slot int, peerRecord []byte) {
	switch m.gen {
	case pokemon.Gen2:
		var payload chcPayloadGen2

		if err := pokemon.Unmarshal(peerRecord, &payload); err != nil {
			return
		}

		ap.g2.SwapWithLast(slot, payload.Record, payload.OT, payload.Nickname)
	default:
		var payload chcPayloadGen1

		if err := pokemon.Unmarshal(peerRecord, &payload); err != nil {
			return
		}

		ap.g1.SwapWithLast(slot, payload.Record, payload.OT, payload.Nickname)
	}
}

// runNeedData implements §4.8.1 step 8: each side reports whether the
// incoming Pokémon is a "special mon" (evolves or learns a move on
// trade), and the owner of an evolving slot sends MVSX on the next
// re-entry.
func (m *Mediator) runNeedData(ap *activeParty, slot int) {
	own := noNeedData

	if m.isSpecialMon(ap, slot) {
		own = needData
	}

	if err := m.peer.SendWithCounter(m.tag(m.askTag()), []uint8{own}); err != nil {
		return
	}

	peerNeeds, ok := m.waitByteTag(m.askTag())

	if !ok {
		return
	}

	m.expectOwnMVS = own == needData
	m.expectPeerMVS = peerNeeds == needData
	m.ownBlankTrade = !m.expectOwnMVS
	m.peerBlankTrade = !m.expectPeerMVS
}

// isSpecialMon reports whether the Pokémon we received needs a post-trade
// move refresh: a trade-evolution entry for its species, or held-item
// conditioned evolution, per the bundled evolution table (§6.1
// "evolution_ids.bin").
func (m *Mediator) isSpecialMon(ap *activeParty, slot int) bool {
	if m.tables == nil {
		return false
	}

	var species uint16
	var heldItem uint16

	switch m.gen {
	case pokemon.Gen2:
		species = uint16(ap.g2.CoreAt(slot).Species)
		heldItem = uint16(ap.g2.CoreAt(slot).HeldItem)
	default:
		species = uint16(ap.g1.CoreAt(slot).Species)
	}

	for _, e := range m.tables.Evolutions {
		if e.FromSpecies != species {
			continue
		}

		if e.HeldItem == 0 || e.HeldItem == heldItem {
			return true
		}
	}

	return false
}
