package data

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
)

// Load reads the on-disk layout described in §6.1 for the given
// generation, rooted at dataRoot (e.g. ".../data/gsc" or ".../data/rse").
// Only the Japanese mail tables and the bundled section templates
// (no_mail_section.bin, base_random_section.bin, base.bin, base_pool.bin)
// are optional: when missing they are left nil. Any other missing or
// unreadable file, sanity-check tables included, makes Load return an
// error; a successful load always has SanityChecksEnabled set.
func Load(dataRoot string, gen pokemon.Generation) (*StaticTables, error) {
	st := &StaticTables{
		Gen:                  gen,
		Stats:                map[uint16][6]uint8{},
		ExpGroups:            map[uint16]uint8{},
		ExpCurves:            map[uint8][101]uint32{},
		SpeciesNames:         map[uint16]string{},
		MovesPP:              map[uint8]uint8{},
		TextConv:             map[uint8]rune{},
		SanityChecksEnabled:  true,
	}

	p := func(name string) string { return filepath.Join(dataRoot, name) }

	if err := loadStats(p("stats.bin"), st); err != nil {
		return nil, fmt.Errorf("stats.bin: %w", err)
	}

	if err := loadExpGroups(p("pokemon_exp_groups.bin"), st); err != nil {
		return nil, fmt.Errorf("pokemon_exp_groups.bin: %w", err)
	}

	if err := loadExpCurves(p("pokemon_exp.txt"), st); err != nil {
		return nil, fmt.Errorf("pokemon_exp.txt: %w", err)
	}

	if err := loadSpeciesNames(p("pokemon_names.txt"), st); err != nil {
		return nil, fmt.Errorf("pokemon_names.txt: %w", err)
	}

	if err := loadTextConv(p("text_conv.txt"), st); err != nil {
		return nil, fmt.Errorf("text_conv.txt: %w", err)
	}

	if err := loadEggNick(p("egg_nick.bin"), st); err != nil {
		return nil, fmt.Errorf("egg_nick.bin: %w", err)
	}

	switch gen {
	case pokemon.Gen1, pokemon.Gen2:
		if err := loadBitmapFile(p("bad_ids_pokemon.bin"), &st.InvalidSpecies); err != nil {
			return nil, fmt.Errorf("bad_ids_pokemon.bin: %w", err)
		}

		if err := loadBitmapFile(p("bad_ids_moves.bin"), &st.InvalidMoves); err != nil {
			return nil, fmt.Errorf("bad_ids_moves.bin: %w", err)
		}

		if err := loadBitmapFile(p("bad_ids_items.bin"), &st.InvalidItems); err != nil {
			return nil, fmt.Errorf("bad_ids_items.bin: %w", err)
		}

		if err := loadBitmapFile(p("bad_ids_text.bin"), &st.InvalidText); err != nil {
			return nil, fmt.Errorf("bad_ids_text.bin: %w", err)
		}

		if err := loadMovesPP(p("moves_pp_list.bin"), st); err != nil {
			return nil, fmt.Errorf("moves_pp_list.bin: %w", err)
		}

		if err := loadEvolutions(p("evolution_ids.bin"), st); err != nil {
			return nil, fmt.Errorf("evolution_ids.bin: %w", err)
		}

		if err := loadBitmapFile(p("pokemon_patch_set_0.bin"), &st.PatchSet0); err != nil {
			return nil, fmt.Errorf("pokemon_patch_set_0.bin: %w", err)
		}

		if err := loadBitmapFile(p("pokemon_patch_set_1.bin"), &st.PatchSet1); err != nil {
			return nil, fmt.Errorf("pokemon_patch_set_1.bin: %w", err)
		}

		if err := loadBitmapFile(p("mail_patch_set.bin"), &st.MailPatchSet); err != nil {
			return nil, fmt.Errorf("mail_patch_set.bin: %w", err)
		}

		st.NoMailSection = tryReadFile(p("no_mail_section.bin"))
		st.BaseRandomSection = tryReadFile(p("base_random_section.bin"))
		st.DefaultParty = tryReadFile(p("base.bin"))

		// Japanese support is entirely optional (§4.3 "Missing optional
		// tables degrade gracefully: Japanese features off").
		if buf := tryReadFile(p("japanese_mail_patch_set.bin")); buf != nil {
			var bm Bitmap256
			bm.SetAll(buf)
			st.JapaneseMailPatchSet = bm
		}

		if m := tryLoadConversionTable(p("mail_conversion_table_en_to_jp.bin")); m != nil {
			st.MailConversionEnToJP = m
		}

		if m := tryLoadConversionTable(p("mail_conversion_table_jp_to_en.bin")); m != nil {
			st.MailConversionJPToEn = m
		}

	case pokemon.Gen3:
		if err := loadBitmapFile(p("invalid_pokemon.bin"), &st.InvalidSpecies); err != nil {
			return nil, fmt.Errorf("invalid_pokemon.bin: %w", err)
		}

		if err := loadBitmapFile(p("invalid_held_items.bin"), &st.InvalidItems); err != nil {
			return nil, fmt.Errorf("invalid_held_items.bin: %w", err)
		}

		if err := loadAbilities(p("abilities.bin"), st); err != nil {
			return nil, fmt.Errorf("abilities.bin: %w", err)
		}

		if err := loadMovesPP(p("moves_pp_list.bin"), st); err != nil {
			return nil, fmt.Errorf("moves_pp_list.bin: %w", err)
		}

		st.DefaultParty = tryReadFile(p("base.bin"))
		st.DefaultPoolParty = tryReadFile(p("base_pool.bin"))
	}

	return st, nil
}

func tryReadFile(path string) []uint8 {
	b, err := os.ReadFile(path)

	if err != nil {
		return nil
	}

	return b
}

func tryLoadConversionTable(path string) map[uint8]uint8 {
	b, err := os.ReadFile(path)

	if err != nil || len(b)%2 != 0 {
		return nil
	}

	m := make(map[uint8]uint8, len(b)/2)

	for i := 0; i < len(b); i += 2 {
		m[b[i]] = b[i+1]
	}

	return m
}

func loadBitmapFile(path string, bm *Bitmap256) error {
	b, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	bm.SetAll(b)

	return nil
}

func loadStats(path string, st *StaticTables) error {
	b, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	if len(b)%6 != 0 {
		return fmt.Errorf("stats.bin length %d is not a multiple of 6", len(b))
	}

	for i := 0; i*6 < len(b); i++ {
		var row [6]uint8
		copy(row[:], b[i*6:i*6+6])
		st.Stats[uint16(i)] = row
	}

	return nil
}

func loadExpGroups(path string, st *StaticTables) error {
	b, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	for i, g := range b {
		st.ExpGroups[uint16(i)] = g
	}

	return nil
}

// loadExpCurves reads a text table of "group,level,cumulative_exp" lines
// (§6.1 "pokemon_exp.txt"), one entry per level 1..100.
func loadExpCurves(path string, st *StaticTables) error {
	f, err := os.Open(path)

	if err != nil {
		return err
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")

		if len(fields) != 3 {
			continue
		}

		group, err1 := strconv.ParseUint(fields[0], 10, 8)
		level, err2 := strconv.ParseUint(fields[1], 10, 8)
		exp, err3 := strconv.ParseUint(fields[2], 10, 32)

		if err1 != nil || err2 != nil || err3 != nil || level > 100 {
			continue
		}

		curve := st.ExpCurves[uint8(group)]
		curve[level] = uint32(exp)
		st.ExpCurves[uint8(group)] = curve
	}

	return scanner.Err()
}

func loadSpeciesNames(path string, st *StaticTables) error {
	f, err := os.Open(path)

	if err != nil {
		return err
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	idx := uint16(0)

	for scanner.Scan() {
		st.SpeciesNames[idx] = strings.TrimSpace(scanner.Text())
		idx++
	}

	return scanner.Err()
}

func loadTextConv(path string, st *StaticTables) error {
	f, err := os.Open(path)

	if err != nil {
		return err
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)

		bv, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 0, 8)

		if err != nil || len(parts[1]) == 0 {
			continue
		}

		st.TextConv[uint8(bv)] = []rune(parts[1])[0]
	}

	return scanner.Err()
}

func loadEggNick(path string, st *StaticTables) error {
	b, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	st.EggNickname = b

	return nil
}

func loadMovesPP(path string, st *StaticTables) error {
	b, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	for i, pp := range b {
		st.MovesPP[uint8(i)] = pp
	}

	return nil
}

// loadEvolutions reads fixed 6-byte triples (from-species u16, to-species
// u16, held-item u16, all little-endian) terminated by EOF (§6.1
// "evolution_ids.bin").
func loadEvolutions(path string, st *StaticTables) error {
	f, err := os.Open(path)

	if err != nil {
		return err
	}

	defer f.Close()

	buf := make([]uint8, 6)

	for {
		_, err := io.ReadFull(f, buf)

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}

		if err != nil {
			return err
		}

		st.Evolutions = append(st.Evolutions, EvolutionEntry{
			FromSpecies: binary.LittleEndian.Uint16(buf[0:2]),
			ToSpecies:   binary.LittleEndian.Uint16(buf[2:4]),
			HeldItem:    binary.LittleEndian.Uint16(buf[4:6]),
		})
	}

	return nil
}

// loadAbilities reads fixed 2-byte (ability1, ability2) pairs indexed by
// species (§6.1 "abilities.bin").
func loadAbilities(path string, st *StaticTables) error {
	b, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	if len(b)%2 != 0 {
		return fmt.Errorf("abilities.bin length %d is not a multiple of 2", len(b))
	}

	st.Abilities = make(map[uint16][2]uint8, len(b)/2)

	for i := 0; i*2 < len(b); i++ {
		st.Abilities[uint16(i)] = [2]uint8{b[i*2], b[i*2+1]}
	}

	return nil
}
