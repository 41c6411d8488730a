package pokemon

import "testing"

func TestNameEncodeDecodeRoundTrip(t *testing.T) {
	table := DefaultTextTable()

	encoded := EncodeName("RED", 11, table)

	var n Name
	copy(n[:], encoded)

	if got := n.String(); got != "RED" {
		t.Errorf("got %q, want %q", got, "RED")
	}
}

func TestEncodeNameTruncatesAndPads(t *testing.T) {
	table := DefaultTextTable()

	encoded := EncodeName("ABCDEFGHIJKLMNOP", 11, table)

	if len(encoded) != 11 {
		t.Fatalf("got length %d, want 11", len(encoded))
	}

	var n Name
	copy(n[:], encoded)

	if got := n.String(); got != "ABCDEFGHIJK" {
		t.Errorf("got %q, want truncation to 11 chars", got)
	}
}

func TestDecodeTextUnknownByteIsQuestionMark(t *testing.T) {
	table := DefaultTextTable()

	if r := table.DecodeText(0x01); r != '?' {
		t.Errorf("unknown byte decoded to %q, want '?'", r)
	}
}

func TestPartyGen1MarshalUnmarshalRoundTrip(t *testing.T) {
	p := &PartyGen1{}

	p.Header.PartyCount = 2
	p.Header.PartyMembers = [gen1PartySlots + 1]uint8{1, 4, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	p.Header.TrainerID = 12345

	p.Party[0].Species = 1
	p.Party[0].HP = 45
	p.Party[0].Level = 5
	p.Party[0].Moves = [4]uint8{33, 45, 0, 0}

	copy(p.OriginalTrainerNames[0][:], EncodeName("ASH", 11, DefaultTextTable()))
	copy(p.Nicknames[0][:], EncodeName("BULBA", 11, DefaultTextTable()))

	buf, err := Marshal(p)

	if err != nil {
		t.Fatalf("Marshal: %s", err)
	}

	if len(buf) != Gen1SectionLengths[1] {
		t.Fatalf("marshaled length %d, want %d", len(buf), Gen1SectionLengths[1])
	}

	reparsed, err := ParsePartyGen1(buf)

	if err != nil {
		t.Fatalf("ParsePartyGen1: %s", err)
	}

	if reparsed.Header.PartyCount != 2 {
		t.Errorf("party count: got %d, want 2", reparsed.Header.PartyCount)
	}

	if reparsed.Party[0].Species != 1 || reparsed.Party[0].HP != 45 {
		t.Errorf("slot 0 mismatch: got %+v", reparsed.Party[0])
	}

	if got := reparsed.OriginalTrainerNames[0].String(); got != "ASH" {
		t.Errorf("OT name: got %q, want ASH", got)
	}
}

func TestPartyGen1SwapWithLast(t *testing.T) {
	p := &PartyGen1{}
	p.Header.PartyCount = 3
	p.Header.PartyMembers[0] = 1
	p.Header.PartyMembers[1] = 2
	p.Header.PartyMembers[2] = 3

	p.Party[0].Species = 1
	p.Party[1].Species = 2
	p.Party[2].Species = 3

	incoming := RecordGen1{Species: 99}

	p.SwapWithLast(0, incoming, Name{}, Name{})

	if p.Header.PartyMembers[0] != 2 || p.Header.PartyMembers[1] != 3 || p.Header.PartyMembers[2] != 99 {
		t.Errorf("species order after swap: got %v, want [2 3 99]", p.Header.PartyMembers[:3])
	}

	if p.Party[2].Species != 99 {
		t.Errorf("traded-in record not placed in last slot: got %+v", p.Party[2])
	}
}

func TestPartyGen1SpeciesAtOutOfRange(t *testing.T) {
	p := &PartyGen1{}

	if got := p.SpeciesAt(-1); got != 0xFF {
		t.Errorf("negative index: got 0x%02X, want 0xFF", got)
	}

	if got := p.SpeciesAt(gen1PartySlots); got != 0xFF {
		t.Errorf("out of range index: got 0x%02X, want 0xFF", got)
	}
}

func TestRecordGen2HasMail(t *testing.T) {
	r := RecordGen2{HeldItem: mailItemRangeStart}

	if !r.HasMail() {
		t.Error("item at range start not reported as mail")
	}

	r.HeldItem = mailItemRangeEnd + 1

	if r.HasMail() {
		t.Error("item past range end reported as mail")
	}
}

func TestPartyGen2ConvertToEgg(t *testing.T) {
	p := &PartyGen2{}
	p.Party[0].Species = 1
	p.Party[0].HP = 100

	p.ConvertToEgg(0, 20, DefaultTextTable())

	if p.Party[0].Species != EggSentinelSpecies {
		t.Errorf("species: got 0x%02X, want egg sentinel 0x%02X", p.Party[0].Species, EggSentinelSpecies)
	}

	if p.Party[0].HP != 0 {
		t.Errorf("HP not zeroed: got %d", p.Party[0].HP)
	}

	if got := p.Nicknames[0].String(); got != "EGG" {
		t.Errorf("nickname: got %q, want EGG", got)
	}
}

func TestCleanValue(t *testing.T) {
	isPositive := func(v int) bool { return v > 0 }

	if got := CleanValue(5, isPositive, -1); got != 5 {
		t.Errorf("valid value: got %d, want 5", got)
	}

	if got := CleanValue(-5, isPositive, -1); got != -1 {
		t.Errorf("invalid value: got %d, want fallback -1", got)
	}
}
