package pokemon

// Gen 1 section lengths, in transfer order (§3.1): random seed, party,
// 0xFE patch list.
var Gen1SectionLengths = []int{10, 418, 197}

const (
	gen1PartySlots    = 6
	gen1RecordSize    = 44
	gen1PatchListSize = 197
)

// RecordGen1 is the 44-byte Red/Blue/Yellow party Pokémon record. Gen 1
// predates held items, so there is no item field — this mirrors the
// teacher's original PartyData layout (pkg/pokemon/pokemon_types.go),
// which already matched the real cartridge format field-for-field.
type RecordGen1 struct {
	Species           uint8
	HP                uint16
	Level             uint8
	StatusCondition   StatusCondition
	Type1             SpeciesType
	Type2             SpeciesType
	CatchRate         uint8
	Moves             [4]uint8
	OriginalTrainerID uint16
	Experience        [3]uint8
	EffortValues      EffortValues
	IndividualValues  uint16
	MovesPowerPoints  [4]uint8
	// PartyLevel duplicates Level; the cartridge keeps a redundant box-vs-
	// party copy of the level byte in this exact position.
	PartyLevel uint8
	Stats      Stats
}

// HeaderGen1 is the fixed-position portion of the Gen 1 party section that
// precedes the six PartyGen1 records (§3.1 "Party Header"). TrainerID and
// Reserved are the two bytes/one byte needed to make the header, six
// records, and name tables add up to the declared 418-byte section length;
// the real cartridge folds the trainer ID into other fields, but nothing
// in this system inspects those bytes directly, so they are kept explicit
// here instead of hidden in unused padding.
type HeaderGen1 struct {
	TrainerName Name
	PartyCount  uint8
	// PartyMembers is the species list, capped at 6 entries and terminated
	// with 0xFF (§3.1 invariant 4).
	PartyMembers [gen1PartySlots + 1]uint8
	TrainerID    uint16
	Reserved     [1]uint8
}

// PartyGen1 is the full parsed Gen 1 party section (header + name tables).
type PartyGen1 struct {
	Header               HeaderGen1
	Party                [gen1PartySlots]RecordGen1
	OriginalTrainerNames [gen1PartySlots]Name
	Nicknames            [gen1PartySlots]Name
}

// ParsePartyGen1 decodes a 418-byte Gen 1 party section buffer.
func ParsePartyGen1(buf []uint8) (*PartyGen1, error) {
	p := &PartyGen1{}

	if err := Unmarshal(buf, p); err != nil {
		return nil, err
	}

	return p, nil
}

// MarshalPatched serializes p, replacing any 0xFE byte with 0xFF and
// recording its offset in the returned patch list (§4.5 "Patch encoding").
func (p *PartyGen1) MarshalPatched() ([]uint8, PatchList, error) {
	data, err := Marshal(p)

	if err != nil {
		return nil, nil, err
	}

	return data, MarshalPatched(data, 0, gen1PatchListSize), nil
}

// SpeciesAt returns the species byte of party slot i, honoring the
// party-count/0xFF-terminated species list (§3.2 "Cyclic / aliased
// state").
func (p *PartyGen1) SpeciesAt(i int) uint8 {
	if i < 0 || i >= gen1PartySlots {
		return 0xFF
	}

	return p.Header.PartyMembers[i]
}

// CoreAt borrows a pointer to the Pokémon record at slot i for in-place
// reads/writes.
func (p *PartyGen1) CoreAt(i int) *RecordGen1 {
	return &p.Party[i]
}

// OTAt borrows the original-trainer name at slot i.
func (p *PartyGen1) OTAt(i int) *Name {
	return &p.OriginalTrainerNames[i]
}

// NicknameAt borrows the nickname at slot i.
func (p *PartyGen1) NicknameAt(i int) *Name {
	return &p.Nicknames[i]
}

// SwapWithLast implements the post-trade mutation of §4.8.1 step 7 and the
// "Cyclic / aliased state" design note: slots [i+1..last] shift down into
// [i..last-1], and the traded-in record/species/names occupy the last
// slot, without any additional section exchange.
func (p *PartyGen1) SwapWithLast(slot int, incoming RecordGen1, incomingOT, incomingNickname Name) {
	n := int(p.Header.PartyCount)

	if n < 1 {
		n = 1
	}

	if n > gen1PartySlots {
		n = gen1PartySlots
	}

	last := n - 1

	if slot < 0 || slot > last {
		return
	}

	for i := slot; i < last; i++ {
		p.Header.PartyMembers[i] = p.Header.PartyMembers[i+1]
		p.Party[i] = p.Party[i+1]
		p.OriginalTrainerNames[i] = p.OriginalTrainerNames[i+1]
		p.Nicknames[i] = p.Nicknames[i+1]
	}

	p.Header.PartyMembers[last] = incoming.Species
	p.Party[last] = incoming
	p.OriginalTrainerNames[last] = incomingOT
	p.Nicknames[last] = incomingNickname
}
