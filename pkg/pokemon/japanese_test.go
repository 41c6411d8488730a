package pokemon

import "testing"

func narrowGen1PartyBuf() []uint8 {
	buf := make([]uint8, Gen1SectionLengths[1]-(WideNameWidth-NarrowNameWidth)*13)

	for i := range buf {
		buf[i] = uint8(i % 251)
	}

	return buf
}

func TestExpandCollapseJapaneseNamesRoundTrip(t *testing.T) {
	narrow := narrowGen1PartyBuf()

	wide := ExpandJapaneseNames(narrow, Gen1)

	if len(wide) != Gen1SectionLengths[1] {
		t.Fatalf("expanded length: got %d, want %d", len(wide), Gen1SectionLengths[1])
	}

	back := CollapseJapaneseNames(wide, Gen1)

	if len(back) != len(narrow) {
		t.Fatalf("collapsed length: got %d, want %d", len(back), len(narrow))
	}

	for i := range narrow {
		if back[i] != narrow[i] {
			t.Errorf("byte %d: got 0x%02X, want 0x%02X", i, back[i], narrow[i])
		}
	}
}

func TestExpandJapaneseNamesPadsWithTerminator(t *testing.T) {
	narrow := narrowGen1PartyBuf()

	wide := ExpandJapaneseNames(narrow, Gen1)

	// Trainer name is the first segment: 6 real bytes, then 5 terminator
	// padding bytes, in the 11-byte wide field.
	for i := NarrowNameWidth; i < WideNameWidth; i++ {
		if wide[i] != TextTerminator {
			t.Errorf("trainer name pad byte %d: got 0x%02X, want terminator", i, wide[i])
		}
	}
}

func TestExpandCollapseJapaneseNamesGen2RoundTrip(t *testing.T) {
	buf := make([]uint8, Gen2SectionLengths[1]-(WideNameWidth-NarrowNameWidth)*13)

	for i := range buf {
		buf[i] = uint8((i * 7) % 251)
	}

	wide := ExpandJapaneseNames(buf, Gen2)

	if len(wide) != Gen2SectionLengths[1] {
		t.Fatalf("expanded length: got %d, want %d", len(wide), Gen2SectionLengths[1])
	}

	back := CollapseJapaneseNames(wide, Gen2)

	for i := range buf {
		if back[i] != buf[i] {
			t.Errorf("byte %d: got 0x%02X, want 0x%02X", i, back[i], buf[i])
		}
	}
}

func TestTranslateMailSectionRemapsBodyOnly(t *testing.T) {
	buf := make([]uint8, gen2MailSize*gen2MailSlots+1)

	buf[0] = 0x10          // first body byte of slot 0
	buf[mailMessageBodyLen] = 0x99 // first byte of the author-name field, outside the body

	table := map[uint8]uint8{0x10: 0x20}

	out := TranslateMailSection(buf, table)

	if out[0] != 0x20 {
		t.Errorf("body byte: got 0x%02X, want 0x20", out[0])
	}

	if out[mailMessageBodyLen] != 0x99 {
		t.Errorf("non-body byte was translated: got 0x%02X, want 0x99 unchanged", out[mailMessageBodyLen])
	}
}

func TestTranslateMailSectionNilTablePassesThrough(t *testing.T) {
	buf := []uint8{1, 2, 3}

	out := TranslateMailSection(buf, nil)

	for i := range buf {
		if out[i] != buf[i] {
			t.Errorf("byte %d: got 0x%02X, want 0x%02X unchanged", i, out[i], buf[i])
		}
	}
}
