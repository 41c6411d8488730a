// Package data loads the bundled static tables described in spec §6.1:
// per-species stat/EXP tables, bad-ID bitmaps, patch-set membership
// bitmaps, text conversion dictionaries, and default-party templates. It
// never mutates anything it loads — once built, a *StaticTables value is
// immutable and safely shared by every trade session (§3.3 "Static tables:
// loaded once at startup; immutable thereafter", §9 "Global mutable
// state").
package data

import (
	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
)

// Bitmap256 is a 256-wide boolean membership table (bad item/move/
// species/text IDs, or a patch-set's allowed-value set, §4.3/§4.4).
type Bitmap256 [256]bool

// SetAll marks every byte in ids as present.
func (b *Bitmap256) SetAll(ids []uint8) {
	for _, id := range ids {
		b[id] = true
	}
}

// EvolutionEntry is one trade-evolution trigger (§6.1
// "evolution_ids.bin"): a species that evolves when traded, optionally
// gated on holding a specific item, and the species it becomes.
type EvolutionEntry struct {
	FromSpecies uint16
	ToSpecies   uint16
	HeldItem    uint16 // 0 if unconditional
}

// StaticTables is every piece of bundled reference data a trade session
// needs, for one cartridge generation.
type StaticTables struct {
	Gen pokemon.Generation

	// Stats is species -> 6 base stat bytes (HP,Atk,Def,Spd,SpAtk,SpDef;
	// Gen 1/2 only populate 5).
	Stats map[uint16][6]uint8

	// ExpGroups is species -> EXP-curve group id; ExpCurves is group id ->
	// cumulative EXP required per level (1-indexed by level).
	ExpGroups map[uint16]uint8
	ExpCurves map[uint8][101]uint32

	Evolutions []EvolutionEntry

	SpeciesNames map[uint16]string

	InvalidSpecies Bitmap256
	InvalidMoves   Bitmap256
	InvalidItems   Bitmap256
	InvalidText    Bitmap256

	MovesPP map[uint8]uint8

	// PatchSet0/PatchSet1 are the allowed-value bitmaps for the two
	// 0xFC-page patch sets (§4.4 "Patch-set conformance"); MailPatchSet
	// and JapaneseMailPatchSet are the mail-section equivalents.
	PatchSet0           Bitmap256
	PatchSet1           Bitmap256
	MailPatchSet        Bitmap256
	JapaneseMailPatchSet Bitmap256

	// TextConv is the byte<->rune dictionary (§6.1 "text_conv.txt").
	TextConv map[uint8]rune

	// MailConversionEnToJP/JPToEn are the Japanese<->International mail
	// byte-translation tables (§4.5 "Japanese handling"); nil if the
	// optional file was absent (Japanese features off, §4.3 "degrade
	// gracefully").
	MailConversionEnToJP map[uint8]uint8
	MailConversionJPToEn map[uint8]uint8

	// Abilities is species -> (ability1, ability2) for Gen 3's ability
	// consistency check (§4.5 "Ability rule"); nil for Gen 1/2.
	Abilities map[uint16][2]uint8

	// NoMailSection/BaseRandomSection/DefaultParty/DefaultPoolParty are
	// bundled section templates (§4.3), loaded when present. Of these only
	// DefaultParty is read outside pkg/data: the Gen 3 mediator publishes
	// it as its own FL3S section. Gen 1/2 mediators do not use any of
	// them; their first buffered cycle runs a synchronous exchange.
	NoMailSection    []uint8
	BaseRandomSection []uint8
	DefaultParty     []uint8
	DefaultPoolParty []uint8

	EggNickname []uint8

	// SanityChecksEnabled toggles the validator between substitution mode
	// and identity mode (§4.4 "Failure policy").
	SanityChecksEnabled bool
}
