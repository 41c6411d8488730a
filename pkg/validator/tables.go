package validator

import "github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"

// repeat returns n copies of v, a small helper for building the
// data-driven tables below field-by-field.
func repeat(v CheckVariant, n int) Table {
	t := make(Table, n)

	for i := range t {
		t[i] = v
	}

	return t
}

func concat(tables ...Table) Table {
	var out Table

	for _, t := range tables {
		out = append(out, t...)
	}

	return out
}

// SinglePokemonTable builds the "single-Pokémon" check table (§4.4
// "Single-Pokemon and moves-only variants"): the same primitives as a
// full party walk, but scoped to exactly one RecordGen1/RecordGen2-sized
// record, as used for peer-sent Gen 1/2 trade selections (CHC).
func SinglePokemonTable(gen pokemon.Generation) Table {
	switch gen {
	case pokemon.Gen2:
		return concat(
			repeat(CheckSpecies, 1),
			repeat(CheckItem, 1),
			repeat(CheckMove, 4),
			repeat(CheckNothing, 2), // OT ID
			repeat(CheckExperience, 3),
			repeat(CheckNothing, 10), // effort values
			repeat(CheckLoadStatIV, 2),
			repeat(CheckPP, 4),
			repeat(CheckEggCyclesFriendship, 1),
			repeat(CheckNothing, 1), // Pokérus
			repeat(CheckNothing, 2), // caught data
			repeat(CheckLevel, 1),
			repeat(CheckNothing, 1), // status
			repeat(CheckNothing, 1), // unused
			repeat(CheckHP, 2),
			repeat(CheckStat, 2), // max HP
			repeat(CheckStat, 2), // attack
			repeat(CheckStat, 2), // defense
			repeat(CheckStat, 2), // speed
			repeat(CheckStat, 2), // sp. attack
			repeat(CheckStat, 2), // sp. defense
		)
	default:
		return concat(
			repeat(CheckSpecies, 1),
			repeat(CheckHP, 2),
			repeat(CheckLevel, 1),
			repeat(CheckNothing, 1), // status
			repeat(CheckType, 2),
			repeat(CheckNothing, 1), // catch rate
			repeat(CheckMove, 4),
			repeat(CheckNothing, 2), // OT ID
			repeat(CheckExperience, 3),
			repeat(CheckNothing, 10), // effort values
			repeat(CheckLoadStatIV, 2),
			repeat(CheckPP, 4),
			repeat(CheckLevel, 1), // redundant party level
			repeat(CheckStat, 2),  // max HP
			repeat(CheckStat, 2),  // attack
			repeat(CheckStat, 2),  // defense
			repeat(CheckStat, 2),  // speed
			repeat(CheckStat, 2),  // special
		)
	}
}

// MovesOnlyTable builds the shorter table used for MVS/M3S move-refresh
// messages: four moves, then four PP bytes (§4.8.1 step 8, §6.3 "MVSX").
func MovesOnlyTable() Table {
	return concat(
		repeat(CheckMove, 4),
		repeat(CheckPP, 4),
	)
}
