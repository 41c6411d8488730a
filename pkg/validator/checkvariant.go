// Package validator implements the position-indexed section sanitizer of
// spec §4.4: a data-driven table of 26 "check variants" walks a section
// buffer one byte at a time, mutating a shared CheckContext accumulator
// and substituting any byte that fails its field's rule. The validator
// never rejects a section outright — every failure is a per-field
// substitution (§4.4 "Failure policy").
package validator

// CheckVariant names one of the 26 per-position sanitizer primitives
// (§4.4 "Check variants (exhaustive)").
type CheckVariant uint8

const (
	CheckNothing CheckVariant = iota
	CheckText
	CheckTextNewline
	CheckTextFinal
	CheckTextFinalNoEnd
	CheckTeamSize
	CheckSpecies
	CheckSpeciesSpecial
	CheckSpeciesForceTerminate
	CheckMove
	CheckItem
	CheckLevel
	CheckHP
	CheckLoadStatExp
	CheckLoadStatIV
	CheckStat
	CheckPP
	CheckExperience
	CheckEggCyclesFriendship
	CheckType
	CheckMailSpecies
	CheckMailItem
	CheckMailSameSpecies
	CheckPokemonPatchSet
	CheckMailPatchSet
	CheckJapaneseMailPatchSet

	checkVariantCount
)

// Table is the data-driven per-position function table: one CheckVariant
// per byte offset in a section (§4.4 "Model": "patches are table
// changes").
type Table []CheckVariant

// ParseTable decodes a checks_map.bin-style byte buffer (§6.1) into a
// Table, one byte per position indexing the 26 variants above.
func ParseTable(raw []uint8) Table {
	t := make(Table, len(raw))

	for i, b := range raw {
		if CheckVariant(b) >= checkVariantCount {
			t[i] = CheckNothing
			continue
		}

		t[i] = CheckVariant(b)
	}

	return t
}
