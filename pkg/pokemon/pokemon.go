// Package pokemon implements the party-data model and codecs shared by all
// three cartridge generations mediated by this trade client: fixed-length
// section buffers, party headers, per-generation Pokémon records, and the
// 0xFE patch-list side channel that keeps those escape bytes off the wire.
package pokemon

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// Generation identifies which cartridge byte protocol a trade session
// speaks.
type Generation uint8

const (
	Gen1 = Generation(1)
	Gen2 = Generation(2)
	Gen3 = Generation(3)
)

func (g Generation) String() string {
	switch g {
	case Gen1:
		return "gen1"
	case Gen2:
		return "gen2"
	case Gen3:
		return "gen3"
	default:
		return "unknown"
	}
}

// StatusCondition is the Gen 1/2 non-volatile status byte.
type StatusCondition uint8

const (
	StatusNone      = StatusCondition(0x00)
	StatusAsleep    = StatusCondition(0x04)
	StatusPoisoned  = StatusCondition(0x08)
	StatusBurned    = StatusCondition(0x10)
	StatusFrozen    = StatusCondition(0x20)
	StatusParalyzed = StatusCondition(0x40)
)

// SpeciesType is a Gen 1/2 elemental type byte.
type SpeciesType uint8

const (
	TypeNormal   = SpeciesType(0x00)
	TypeFighting = SpeciesType(0x01)
	TypeFlying   = SpeciesType(0x02)
	TypePoison   = SpeciesType(0x03)
	TypeGround   = SpeciesType(0x04)
	TypeRock     = SpeciesType(0x05)
	TypeBird     = SpeciesType(0x06)
	TypeBug      = SpeciesType(0x07)
	TypeGhost    = SpeciesType(0x08)
	TypeFire     = SpeciesType(0x14)
	TypeWater    = SpeciesType(0x15)
	TypeGrass    = SpeciesType(0x16)
	TypeElectric = SpeciesType(0x17)
	TypePsychic  = SpeciesType(0x18)
	TypeIce      = SpeciesType(0x19)
	TypeDragon   = SpeciesType(0x1A)
)

// Stats holds the five Gen 1/2 battle stat values (no separate
// Sp.Atk/Sp.Def): HP/Attack/Defense/Speed/Special. Gen 3 records keep
// their six stats as fields of RecordGen3 instead.
type Stats struct {
	HP      uint16
	Attack  uint16
	Defense uint16
	Speed   uint16
	Special uint16
}

// EffortValues is the stat-EXP accumulator (Gen 1/2 naming); Gen 3 calls
// the equivalent field EVs and caps each at 255 rather than 65535.
type EffortValues struct {
	Stats
}

// Name is a fixed 11-byte OT-name/nickname field (Gen 1/2). Gen 3 uses
// shorter, differently-encoded fields handled in gen3.go.
type Name [11]uint8

// String decodes a Name using the default text table, stopping at the
// field terminator (0x50).
func (n *Name) String() string {
	return DecodeName(n[:], DefaultTextTable())
}

// DecodeName decodes an arbitrary-length cartridge text field with the
// given table, stopping at the terminator byte.
func DecodeName(b []uint8, table *TextTable) string {
	res := strings.Builder{}

	for _, c := range b {
		if c == TextTerminator {
			break
		}

		r := table.DecodeText(c)

		if r != 0 {
			res.WriteRune(r)
		}
	}

	return res.String()
}

// EncodeName encodes s into a fixed-width cartridge text field, padding the
// remainder with the terminator byte.
func EncodeName(s string, width int, table *TextTable) []uint8 {
	out := make([]uint8, width)

	for i := range out {
		out[i] = TextTerminator
	}

	i := 0

	for _, r := range s {
		if i >= width {
			break
		}

		out[i] = table.EncodeText(r)
		i++
	}

	return out
}

// Unmarshal decodes a fixed-layout struct from a big-endian byte buffer,
// the same primitive the teacher's TradeBlock codec used.
func Unmarshal(data []uint8, v any) error {
	return binary.Read(bytes.NewReader(data), binary.BigEndian, v)
}

// Marshal encodes a fixed-layout struct into a big-endian byte buffer.
func Marshal(v any) ([]uint8, error) {
	buf := bytes.Buffer{}

	if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// CleanValue implements the validator's `cleanValue(v, pred, default)`
// primitive (§4.4): returns v unchanged when pred holds, otherwise
// fallback.
func CleanValue[T any](v T, pred func(T) bool, fallback T) T {
	if pred(v) {
		return v
	}

	return fallback
}
