package validator

import (
	"testing"

	"github.com/starlarkus/gblink-pokemon-web/pkg/data"
	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
)

func TestSinglePokemonTableLengthMatchesRecordSize(t *testing.T) {
	if got := len(SinglePokemonTable(pokemon.Gen1)); got != 44 {
		t.Errorf("gen1 table length: got %d, want 44", got)
	}

	if got := len(SinglePokemonTable(pokemon.Gen2)); got != 48 {
		t.Errorf("gen2 table length: got %d, want 48", got)
	}
}

func TestRunDisabledIsIdentity(t *testing.T) {
	buf := []uint8{0xFF, 0xFF, 0xFF}
	table := Table{CheckSpecies, CheckLevel, CheckText}

	ctx := NewCheckContext(nil, pokemon.Gen1)
	ctx.SanityChecksEnabled = false

	Run(buf, table, ctx)

	for i, b := range buf {
		if b != 0xFF {
			t.Errorf("position %d: got 0x%02X, want unchanged 0xFF", i, b)
		}
	}

	if ctx.Substitutions() != 0 {
		t.Errorf("substitutions: got %d, want 0", ctx.Substitutions())
	}
}

func TestCheckLevelClampsOutOfRange(t *testing.T) {
	ctx := NewCheckContext(nil, pokemon.Gen1)

	buf := []uint8{0, 255, 50}
	table := Table{CheckLevel, CheckLevel, CheckLevel}

	Run(buf, table, ctx)

	if buf[0] != 5 {
		t.Errorf("level 0: got %d, want default 5", buf[0])
	}

	if buf[1] != 5 {
		t.Errorf("level 255: got %d, want default 5", buf[1])
	}

	if buf[2] != 50 {
		t.Errorf("level 50: got %d, want unchanged 50", buf[2])
	}
}

func TestCheckSpeciesSubstitutesInvalid(t *testing.T) {
	st := &data.StaticTables{SanityChecksEnabled: true}
	st.InvalidSpecies.SetAll([]uint8{250})

	ctx := NewCheckContext(st, pokemon.Gen1)

	buf := []uint8{250}

	Run(buf, Table{CheckSpecies}, ctx)

	if buf[0] != DefaultSpeciesGen1 {
		t.Errorf("invalid species: got 0x%02X, want default 0x%02X", buf[0], DefaultSpeciesGen1)
	}
}

func TestCheckSpeciesSpecialHonorsTeamSize(t *testing.T) {
	ctx := NewCheckContext(nil, pokemon.Gen1)

	buf := []uint8{2, 1, 2, 0xFF, 0xFF, 0xFF, 0xFF}
	table := Table{CheckTeamSize, CheckSpeciesSpecial, CheckSpeciesSpecial, CheckSpeciesSpecial, CheckSpeciesSpecial, CheckSpeciesSpecial, CheckSpeciesSpecial}

	Run(buf, table, ctx)

	if buf[1] != 1 || buf[2] != 2 {
		t.Errorf("live slots: got %v, want [1 2]", buf[1:3])
	}

	for i := 3; i < len(buf); i++ {
		if buf[i] != 0xFF {
			t.Errorf("padding slot %d: got 0x%02X, want 0xFF", i, buf[i])
		}
	}
}

func TestCheckPPCapsAtBasePP40(t *testing.T) {
	st := &data.StaticTables{
		SanityChecksEnabled: true,
		MovesPP:             map[uint8]uint8{1: 40},
	}

	ctx := NewCheckContext(st, pokemon.Gen1)
	ctx.Moves[0] = 1
	ctx.MoveIndex = 1

	// 3 PP-ups (0b11) with a maxed-out PP byte: 40*(1+3/5)=64 overflows the
	// 6-bit field, so the cartridge's own cap of 63 applies.
	got := ctx.checkPP(0xFF)

	ups := got >> 6
	pp := got & 0x3F

	if ups != 3 {
		t.Errorf("ups: got %d, want 3", ups)
	}

	if pp != 63 {
		t.Errorf("pp: got %d, want capped 63", pp)
	}
}

func TestCheckPatchSetRejectsNonMember(t *testing.T) {
	st := &data.StaticTables{SanityChecksEnabled: true}
	st.PatchSet0.SetAll([]uint8{5, 10})

	ctx := NewCheckContext(st, pokemon.Gen1)

	if got := ctx.checkPatchSet(5, patchSet0); got != 5 {
		t.Errorf("member byte: got 0x%02X, want unchanged 5", got)
	}

	if got := ctx.checkPatchSet(6, patchSet0); got != 0x00 {
		t.Errorf("non-member byte: got 0x%02X, want 0x00", got)
	}

	if got := ctx.checkPatchSet(0xFF, patchSet0); got != 0xFF {
		t.Errorf("terminator: got 0x%02X, want unchanged 0xFF", got)
	}
}
