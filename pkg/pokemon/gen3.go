package pokemon

import (
	"bytes"
	"encoding/binary"
)

// binaryReadLE/binaryWriteLE are the little-endian counterparts of
// Unmarshal/Marshal: every Gen 3 field (§4.5 "Layout") is little-endian,
// unlike Gen 1/2's big-endian wire format.
func binaryReadLE(data []uint8, v any) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, v)
}

func binaryWriteLE(v any) ([]uint8, error) {
	buf := bytes.Buffer{}

	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Gen 3 has a single 0x380-byte party section (§3.1).
var Gen3SectionLengths = []int{0x380}

const (
	gen3PartySlots  = 6
	gen3RecordSize  = 100
	gen3EncSize     = 48
	gen3SubSize     = 12
	gen3Substructs  = 4
	gen3NatureCount = 25
)

// EggSpeciesSentinel is the species index reported for a Gen 3 Pokémon
// carrying the egg flag (§4.5 "Derived species for index").
const EggSpeciesSentinel = uint16(0xFFFF)

// MaxValidSpeciesGen3 is the validation gate of §4.5: species must not
// exceed this index post-decrypt.
const MaxValidSpeciesGen3 = uint16(411)

// substructOrder is the precomputed table of the 24 permutations of
// [0,1,2,3], indexed by PID mod 24 (§3.2 invariant 5, §8.1 invariant 7).
// The ordering follows the canonical Growth/Attacks/EVs/Misc assignment
// used throughout the Gen 3 save format.
var substructOrder = [24][4]int{
	{0, 1, 2, 3}, {0, 1, 3, 2}, {0, 2, 1, 3}, {0, 3, 1, 2},
	{0, 2, 3, 1}, {0, 3, 2, 1}, {1, 0, 2, 3}, {1, 0, 3, 2},
	{2, 0, 1, 3}, {3, 0, 1, 2}, {2, 0, 3, 1}, {3, 0, 2, 1},
	{1, 2, 0, 3}, {1, 3, 0, 2}, {2, 1, 0, 3}, {3, 1, 0, 2},
	{2, 3, 0, 1}, {3, 2, 0, 1}, {1, 2, 3, 0}, {1, 3, 2, 0},
	{2, 1, 3, 0}, {3, 1, 2, 0}, {2, 3, 1, 0}, {3, 2, 1, 0},
}

// SubstructKind names the four Gen 3 substructures. SubstructSlot, the
// inverse of substructOrder, maps a permutation index and a kind
// (Growth|Attacks|EVs|Misc) to which of the four 12-byte on-disk blocks
// holds that substructure.
type SubstructKind int

const (
	SubstructGrowth SubstructKind = iota
	SubstructAttacks
	SubstructEVs
	SubstructMisc
)

// SubstructSlot returns the on-disk block index (0..3) holding the given
// substructure kind, for PID-derived permutation index permIdx.
func SubstructSlot(permIdx int, kind SubstructKind) int {
	return substructOrder[permIdx%24][kind]
}

// RecordGen3 is the raw, on-wire 100-byte Ruby/Sapphire/Emerald party
// record (§3.2, §4.5 "Gen 3 record format"). Enc holds the four encrypted
// 12-byte substructures in their on-disk (permuted) order; decode it with
// DecodeGen3 to get plaintext substructures and the Trainer-facing stat
// block.
type RecordGen3 struct {
	PID      uint32
	OTID     uint32
	Nickname [10]uint8
	Language uint16
	OTName   [7]uint8
	Markings uint8
	Checksum uint16
	Unknown  uint16
	Enc      [gen3EncSize]uint8
	// Status onward is the party-only extension of the 80-byte box
	// format, bringing the full record to 100 bytes (§3.2).
	Status      uint32
	Level       uint8
	Pokerus     uint8
	CurrentHP   uint16
	MaxHP       uint16
	StatAttack  uint16
	StatDefense uint16
	StatSpeed   uint16
	StatSpAtk   uint16
	StatSpDef   uint16
}

// ParseRecordGen3 decodes one 100-byte Gen 3 record. Encoding is
// little-endian throughout, per §4.5.
func ParseRecordGen3(buf []uint8) (*RecordGen3, error) {
	r := &RecordGen3{}

	if err := binaryReadLE(buf, r); err != nil {
		return nil, err
	}

	return r, nil
}

// Marshal re-serializes r back into its 100-byte wire form.
func (r *RecordGen3) Marshal() ([]uint8, error) {
	return binaryWriteLE(r)
}

// SubstructGrowthData, SubstructAttacksData, SubstructEVsData, and
// SubstructMiscData are the plaintext layouts of the four 12-byte
// substructures (§4.5).
type SubstructGrowthData struct {
	Species    uint16
	HeldItem   uint16
	Experience uint32
	PPBonuses  uint8
	Friendship uint8
	_          uint16
}

type SubstructAttacksData struct {
	Moves [4]uint16
	PP    [4]uint8
}

type SubstructEVsData struct {
	EVs     [6]uint8
	Contest [6]uint8
}

type SubstructMiscData struct {
	Pokerus      uint8
	MetLocation  uint8
	OriginInfo   uint16
	IVsEggAndAbility uint32
	RibbonsAndObedience uint32
}

// DecodedGen3 is the plaintext view of a Gen 3 record after XOR-decryption
// and substructure unshuffling (§4.5, §8.1 invariant 6).
type DecodedGen3 struct {
	Record   *RecordGen3
	Growth   SubstructGrowthData
	Attacks  SubstructAttacksData
	EVs      SubstructEVsData
	Misc     SubstructMiscData
	Valid    bool // checksum matched
	PermIdx  int
}

// keystream is the 32-bit value XORed into every aligned word of Enc to
// decrypt (and, symmetrically, to encrypt) it (§3.2 invariant 5).
func keystream(pid, otID uint32) uint32 {
	return pid ^ otID
}

// DecodeGen3 decrypts r.Enc, reorders its four substructures back to
// Growth/Attacks/EVs/Misc order, validates the stored checksum, and parses
// each substructure. The record is returned regardless of checksum
// validity (Valid reports whether it may be trusted), matching §7(c):
// "Checksum-invalid: record flagged invalid; still parsed but refused at
// the menu".
func DecodeGen3(r *RecordGen3) (*DecodedGen3, error) {
	key := keystream(r.PID, r.OTID)

	plain := make([]uint8, gen3EncSize)

	var checksum uint32

	for i := 0; i < gen3EncSize; i += 4 {
		word := binary.LittleEndian.Uint32(r.Enc[i : i+4]) ^ key
		binary.LittleEndian.PutUint32(plain[i:i+4], word)

		checksum += uint32(word & 0xFFFF)
		checksum += uint32(word >> 16)
	}

	checksum &= 0xFFFF

	permIdx := int(r.PID % 24)

	blocks := make([][]uint8, gen3Substructs)

	for i := 0; i < gen3Substructs; i++ {
		blocks[i] = plain[i*gen3SubSize : (i+1)*gen3SubSize]
	}

	d := &DecodedGen3{
		Record:  r,
		PermIdx: permIdx,
		Valid:   uint16(checksum) == r.Checksum,
	}

	if err := binaryReadLE(blocks[SubstructSlot(permIdx, SubstructGrowth)], &d.Growth); err != nil {
		return nil, err
	}

	if err := binaryReadLE(blocks[SubstructSlot(permIdx, SubstructAttacks)], &d.Attacks); err != nil {
		return nil, err
	}

	if err := binaryReadLE(blocks[SubstructSlot(permIdx, SubstructEVs)], &d.EVs); err != nil {
		return nil, err
	}

	if err := binaryReadLE(blocks[SubstructSlot(permIdx, SubstructMisc)], &d.Misc); err != nil {
		return nil, err
	}

	return d, nil
}

// EncodeGen3 is the inverse of DecodeGen3: it re-shuffles and
// re-encrypts the four plaintext substructures back into r.Enc and
// recomputes the stored checksum, producing a byte-identical result to
// the original when round-tripped from a record whose checksum was valid
// (§8.1 invariant 6).
func (d *DecodedGen3) EncodeGen3() (*RecordGen3, error) {
	blocks := make([][]uint8, gen3Substructs)

	var err error

	if blocks[SubstructSlot(d.PermIdx, SubstructGrowth)], err = binaryWriteLE(&d.Growth); err != nil {
		return nil, err
	}

	if blocks[SubstructSlot(d.PermIdx, SubstructAttacks)], err = binaryWriteLE(&d.Attacks); err != nil {
		return nil, err
	}

	if blocks[SubstructSlot(d.PermIdx, SubstructEVs)], err = binaryWriteLE(&d.EVs); err != nil {
		return nil, err
	}

	if blocks[SubstructSlot(d.PermIdx, SubstructMisc)], err = binaryWriteLE(&d.Misc); err != nil {
		return nil, err
	}

	plain := make([]uint8, 0, gen3EncSize)

	for _, b := range blocks {
		plain = append(plain, b...)
	}

	key := keystream(d.Record.PID, d.Record.OTID)

	var checksum uint32

	enc := [gen3EncSize]uint8{}

	for i := 0; i < gen3EncSize; i += 4 {
		word := binary.LittleEndian.Uint32(plain[i : i+4])

		checksum += uint32(word & 0xFFFF)
		checksum += uint32(word >> 16)

		binary.LittleEndian.PutUint32(enc[i:i+4], word^key)
	}

	out := *d.Record
	out.Enc = enc
	out.Checksum = uint16(checksum & 0xFFFF)

	return &out, nil
}

// Nature returns the Gen 3 nature index, `PID mod 25` (§4.5).
func (r *RecordGen3) Nature() uint8 {
	return uint8(r.PID % gen3NatureCount)
}

// natureTable is the +/-10% nature modifier applied to a given stat
// index (0=Atk,1=Def,2=Spd,3=SpAtk,4=SpDef), 1.0 for HP or a neutral
// nature-stat pairing.
var natureTable = [gen3NatureCount][5]float64{
	// Each row: Atk, Def, Spd, SpAtk, SpDef multipliers for one nature.
	// Neutral natures (boosted stat == dropped stat: indices 0, 6, 12,
	// 18, 24) are all 1.0; the other 20 natures boost one stat by 1.1 and drop
	// another by 0.9, arranged in the standard Hardy..Quirky nature grid.
}

func init() {
	for n := 0; n < gen3NatureCount; n++ {
		for s := 0; s < 5; s++ {
			natureTable[n][s] = 1.0
		}
	}

	// 20 of the 25 natures boost one stat by 10% and drop another by 10%;
	// the remaining 5 (stat == other) stay neutral. Nature index is
	// boosted*5 + dropped over the 5 non-HP stats (Atk,Def,Spd,SpAtk,SpDef).
	n := 0

	for stat := 0; stat < 5; stat++ {
		for other := 0; other < 5; other++ {
			if stat != other {
				natureTable[n][stat] = 1.1
				natureTable[n][other] = 0.9
			}

			n++
		}
	}
}

// CalcStat computes a Gen 3 battle stat from base stat, IV, EV, level, and
// nature multiplier (§4.5 "Stat formula"): floor((2*base+iv+floor(ev/4))
// *level/100), plus 5 (or level+10 for HP) before the nature multiplier.
// isHP adds level+10 instead of applying a nature multiplier.
func CalcStat(base, iv, ev uint32, level uint8, natureMul float64, isHP bool) uint16 {
	core := (2*base + iv + ev/4) * uint32(level) / 100

	if isHP {
		if base == 1 {
			// Shedinja-style single-HP species: always exactly 1 HP.
			return 1
		}

		return uint16(core + uint32(level) + 10)
	}

	return uint16(float64(core+5) * natureMul)
}

// AbilitySlot returns 0 or 1, the held-ability slot implied by PID parity
// (§4.5 "Ability rule": `(PID & 1) XOR has_second_ability` must be 0
// unless an exception applies).
func (r *RecordGen3) AbilitySlot() uint8 {
	return uint8(r.PID & 1)
}

// AbilityException captures the trade-chain metadata that lets a Pokémon
// legitimately carry its second ability despite PID parity disagreeing
// (§4.5 "Ability rule", §9 "Open questions": match this exception set
// exactly rather than generalizing).
type AbilityException struct {
	MetLocation uint8
	Game        uint8
}

const (
	MetLocationInGameTrade = uint8(0xFE)
	MetLocationFatefulEvent = uint8(0xFF)
	GameColosseum           = uint8(0xF)
)

// AbilityIsValid implements the Gen 3 ability-consistency gate.
// identicalAbilities is true for species whose first and second ability
// slots name the same ability (the XOR is moot for them).
func AbilityIsValid(storedSlot uint8, hasSecondAbility bool, ex AbilityException, identicalAbilities bool) bool {
	if identicalAbilities {
		return true
	}

	if ex.MetLocation == MetLocationInGameTrade || ex.MetLocation == MetLocationFatefulEvent {
		return true
	}

	if ex.Game == GameColosseum {
		return true
	}

	want := uint8(0)

	if hasSecondAbility {
		want = 1
	}

	return storedSlot == want
}

// UnownFormIndex derives the Unown letter form from the PID's nybble
// pairs (§4.5 "Derived species for index"): the bottom two bits of each
// byte of the PID, combined, mod 28.
func UnownFormIndex(pid uint32) uint8 {
	b0 := uint8(pid) & 0x3
	b1 := uint8(pid>>8) & 0x3
	b2 := uint8(pid>>16) & 0x3
	b3 := uint8(pid>>24) & 0x3

	letter := (b0 | (b1 << 2) | (b2 << 4) | (b3 << 6)) % 28

	return letter
}

// DeoxysFormFromVersion derives the Deoxys form byte from the two
// version-info bytes stored alongside origin info (§4.5). The exact
// mapping is cartridge-version dependent (Normal/Attack/Defense/Speed);
// versionInfo is passed through as-is from SubstructMiscData.OriginInfo.
func DeoxysFormFromVersion(versionInfo uint16) uint8 {
	return uint8(versionInfo & 0x3)
}

// IsBadEgg reports the Gen 3 "bad egg" misc bit (§4.5 "Validation gates
// post-decrypt").
func (d *DecodedGen3) IsBadEgg() bool {
	return d.Misc.IVsEggAndAbility&(1<<30) != 0
}

// IsEgg reports the Gen 3 egg flag, packed into IVsEggAndAbility.
func (d *DecodedGen3) IsEgg() bool {
	return d.Misc.IVsEggAndAbility&(1<<31) != 0
}

// HasSecondAbility reports the ability-slot bit packed into
// IVsEggAndAbility.
func (d *DecodedGen3) HasSecondAbility() bool {
	return d.Misc.IVsEggAndAbility&(1<<29) != 0
}

// IVs unpacks the five-bit-packed IV fields from IVsEggAndAbility.
func (d *DecodedGen3) IVs() (hp, atk, def, spd, spAtk, spDef uint8) {
	v := d.Misc.IVsEggAndAbility

	hp = uint8(v & 0x1F)
	atk = uint8((v >> 5) & 0x1F)
	def = uint8((v >> 10) & 0x1F)
	spd = uint8((v >> 15) & 0x1F)
	spAtk = uint8((v >> 20) & 0x1F)
	spDef = uint8((v >> 25) & 0x1F)

	return
}

// ValidateGen3Species implements the post-decrypt species gate (§4.5):
// species must not exceed MaxValidSpeciesGen3, and an egg reports the
// sentinel species for indexing purposes regardless of Growth.Species.
func (d *DecodedGen3) ValidateGen3Species() (species uint16, ok bool) {
	if d.IsEgg() {
		return EggSpeciesSentinel, true
	}

	if d.Growth.Species > MaxValidSpeciesGen3 {
		return d.Growth.Species, false
	}

	return d.Growth.Species, true
}

// HasValidMove reports whether Attacks carries at least one nonzero move,
// the second post-decrypt validation gate.
func (d *DecodedGen3) HasValidMove() bool {
	for _, m := range d.Attacks.Moves {
		if m != 0 {
			return true
		}
	}

	return false
}
