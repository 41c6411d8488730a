package pokemon

// Gen 2 section lengths, in transfer order (§3.1): random seed, party,
// 0xFE patch list, mail.
var Gen2SectionLengths = []int{10, 444, 197, 385}

const (
	gen2PartySlots    = 6
	gen2RecordSize    = 48
	gen2PatchListSize = 197
	gen2MailSlots     = 6
	gen2MailSize      = 64
)

// EggSentinelSpecies is the species byte used for the Gen 2 egg
// conversion (§4.5 "Egg conversion").
const EggSentinelSpecies = uint8(0xFD)

// RecordGen2 is the 48-byte Gold/Silver/Crystal party Pokémon record. Gen
// 2 adds a held item, splits Special into Attack/Defense for the
// calculated-stats block, and carries friendship/Pokérus/mail-bit bytes
// the validator and codec both inspect.
type RecordGen2 struct {
	Species           uint8
	HeldItem          uint8
	Moves             [4]uint8
	OriginalTrainerID uint16
	Experience        [3]uint8
	EffortValues      EffortValues
	IndividualValues  uint16
	MovesPowerPoints  [4]uint8
	// FriendshipOrEggCycles doubles as egg-hatch-cycle counter while the
	// egg bit (misc data) is set (§4.5 "Egg conversion").
	FriendshipOrEggCycles uint8
	PokerusStatus         uint8
	CaughtData            uint16
	PartyLevel            uint8
	StatusCondition       StatusCondition
	Unused                uint8
	HP                    uint16
	MaxHP                 uint16
	Attack                uint16
	Defense               uint16
	Speed                 uint16
	SpecialAttack         uint16
	SpecialDefense        uint16
}

// HasMail reports whether this Pokémon is holding a mail item (§4.6
// "Mail-section shortcut" consults this across a whole party).
func (r *RecordGen2) HasMail() bool {
	return r.HeldItem >= mailItemRangeStart && r.HeldItem <= mailItemRangeEnd
}

// mailItemRangeStart/End bound the Gen 2 mail-item IDs (Flower Mail
// through Mirage Mail). Any cartridge carrying an item in this range has
// attached mail that must ride along with the trade.
const (
	mailItemRangeStart = uint8(0x9D)
	mailItemRangeEnd   = uint8(0xA7)
)

// HeaderGen2 mirrors HeaderGen1 with the same trailing reserved padding to
// hit the declared 444-byte section length exactly.
type HeaderGen2 struct {
	TrainerName  Name
	PartyCount   uint8
	PartyMembers [gen2PartySlots + 1]uint8
	TrainerID    uint16
	Reserved     [3]uint8
}

// PartyGen2 is the full parsed Gen 2 party section.
type PartyGen2 struct {
	Header               HeaderGen2
	Party                [gen2PartySlots]RecordGen2
	OriginalTrainerNames [gen2PartySlots]Name
	Nicknames            [gen2PartySlots]Name
}

// ParsePartyGen2 decodes a 444-byte Gen 2 party section buffer.
func ParsePartyGen2(buf []uint8) (*PartyGen2, error) {
	p := &PartyGen2{}

	if err := Unmarshal(buf, p); err != nil {
		return nil, err
	}

	return p, nil
}

// MarshalPatched serializes p under the Gen 2 Pokémon patch set.
func (p *PartyGen2) MarshalPatched() ([]uint8, PatchList, error) {
	data, err := Marshal(p)

	if err != nil {
		return nil, nil, err
	}

	return data, MarshalPatched(data, 0, gen2PatchListSize), nil
}

func (p *PartyGen2) SpeciesAt(i int) uint8 {
	if i < 0 || i >= gen2PartySlots {
		return 0xFF
	}

	return p.Header.PartyMembers[i]
}

func (p *PartyGen2) CoreAt(i int) *RecordGen2 { return &p.Party[i] }
func (p *PartyGen2) OTAt(i int) *Name         { return &p.OriginalTrainerNames[i] }
func (p *PartyGen2) NicknameAt(i int) *Name   { return &p.Nicknames[i] }

// SwapWithLast is the Gen 2 analogue of PartyGen1.SwapWithLast (§4.8.1
// step 7).
func (p *PartyGen2) SwapWithLast(slot int, incoming RecordGen2, incomingOT, incomingNickname Name) {
	n := int(p.Header.PartyCount)

	if n < 1 {
		n = 1
	}

	if n > gen2PartySlots {
		n = gen2PartySlots
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

// ConvertToEgg overwrites slot i with the egg sentinel (§4.5 "Egg
// conversion"): species becomes the egg sentinel, HP is zeroed, hatching
// cycles are set, and the nickname becomes "EGG".
func (p *PartyGen2) ConvertToEgg(slot int, hatchCycles uint8, table *TextTable) {
	if slot < 0 || slot >= gen2PartySlots {
		return
	}

	p.Header.PartyMembers[slot] = EggSentinelSpecies
	p.Party[slot].Species = EggSentinelSpecies
	p.Party[slot].HP = 0
	p.Party[slot].FriendshipOrEggCycles = hatchCycles

	copy(p.Nicknames[slot][:], EncodeName("EGG", len(Name{}), table))
}

// MailMessage is one Gen 2 mail slot: 33 bytes of message text, the
// author's name, their trainer ID, and the species that carried it.
type MailMessage struct {
	Message    [33]uint8
	AuthorName Name
	OTID       uint16
	Species    uint8
	Reserved   [17]uint8
}

// MailSection is the parsed Gen 2 mail section (385 bytes: 6 messages +
// one reserved byte).
type MailSection struct {
	Messages [gen2MailSlots]MailMessage
	Reserved [1]uint8
}

// ParseMailSection decodes a 385-byte Gen 2 mail section buffer.
func ParseMailSection(buf []uint8) (*MailSection, error) {
	m := &MailSection{}

	if err := Unmarshal(buf, m); err != nil {
		return nil, err
	}

	return m, nil
}

// MarshalPatched serializes m under the Gen 2 mail patch set, whose
// offsets are recorded relative to the mail section's own base rather
// than the Pokémon section's (§4.5 "Mail and Pokémon share the primitive
// with different base positions").
func (m *MailSection) MarshalPatched() ([]uint8, PatchList, error) {
	data, err := Marshal(m)

	if err != nil {
		return nil, nil, err
	}

	return data, MarshalPatched(data, 0, gen2PatchListSize), nil
}

// HasAnyMail reports whether any party slot (by held item) carries mail,
// driving the §4.6 mail-section shortcut.
func (p *PartyGen2) HasAnyMail() bool {
	for i := 0; i < int(p.Header.PartyCount) && i < gen2PartySlots; i++ {
		if p.Party[i].HasMail() {
			return true
		}
	}

	return false
}
