package pokemon

// NarrowNameWidth/WideNameWidth are the Japanese and International name-
// field byte widths (§4.5 "Japanese handling": "player-name and Pokémon-
// name fields occupy 6 bytes; the International format expects 11").
const (
	NarrowNameWidth = 6
	WideNameWidth   = 11
)

type nameSegKind int

const (
	segFixed nameSegKind = iota
	segName
)

type nameSeg struct {
	kind  nameSegKind
	width int // segFixed only
}

// partyNameLayout describes, in wire order, the fixed-width and name-field
// blocks making up one generation's party section (§3.1): trainer name,
// the remaining header bytes, the six Pokémon records, then the six OT-name
// and six nickname tables. Only the name segments' byte width differs
// between the Japanese and International wire formats; every fixed segment
// is the same size in both.
func partyNameLayout(gen Generation) []nameSeg {
	names6 := func() []nameSeg {
		s := make([]nameSeg, 6)
		for i := range s {
			s[i] = nameSeg{segName, 0}
		}
		return s
	}

	var headerRest, records int

	switch gen {
	case Gen2:
		headerRest = 1 + (gen2PartySlots + 1) + 2 + 3 // count+members+trainerID+reserved
		records = gen2PartySlots * gen2RecordSize
	default:
		headerRest = 1 + (gen1PartySlots + 1) + 2 + 1
		records = gen1PartySlots * gen1RecordSize
	}

	layout := []nameSeg{{segName, 0}, {segFixed, headerRest}, {segFixed, records}}
	layout = append(layout, names6()...) // OT names
	layout = append(layout, names6()...) // nicknames

	return layout
}

// ExpandJapaneseNames converts a Japanese-format party section buffer
// (6-byte name fields) into the International layout (11-byte name fields)
// the rest of this package assumes, inserting TextTerminator padding at
// each name field (§4.5 "On ingest from a Japanese cartridge, the codec
// inserts 0x50 padding at known fixed positions").
func ExpandJapaneseNames(buf []uint8, gen Generation) []uint8 {
	layout := partyNameLayout(gen)

	out := make([]uint8, 0, len(buf)+(WideNameWidth-NarrowNameWidth)*12+WideNameWidth)
	off := 0

	for _, seg := range layout {
		if seg.kind == segFixed {
			out = append(out, buf[off:off+seg.width]...)
			off += seg.width
			continue
		}

		out = append(out, buf[off:off+NarrowNameWidth]...)
		off += NarrowNameWidth

		for i := 0; i < WideNameWidth-NarrowNameWidth; i++ {
			out = append(out, TextTerminator)
		}
	}

	return out
}

// CollapseJapaneseNames is the inverse of ExpandJapaneseNames: given an
// International-layout section buffer, it strips the trailing padding off
// each 11-byte name field back down to 6 bytes, producing the layout a
// Japanese cartridge expects on egress (§4.5 "on egress to a Japanese
// cartridge, it removes those bytes again").
func CollapseJapaneseNames(buf []uint8, gen Generation) []uint8 {
	layout := partyNameLayout(gen)

	out := make([]uint8, 0, len(buf))
	off := 0

	for _, seg := range layout {
		if seg.kind == segFixed {
			out = append(out, buf[off:off+seg.width]...)
			off += seg.width
			continue
		}

		out = append(out, buf[off:off+NarrowNameWidth]...)
		off += WideNameWidth
	}

	return out
}

// mailMessageStride/mailMessageBodyLen are MailMessage's on-wire size and
// the length of its translatable body (§3.1, gen2.go's MailMessage).
const (
	mailMessageStride  = 64
	mailMessageBodyLen = 33
)

// TranslateMailSection remaps every mail message body byte in a 385-byte
// Gen 2 mail section buffer through table, leaving the author name/OTID/
// species/reserved bytes of each slot untouched (§4.5 "Mail bodies are
// additionally byte-translated via lookup tables"). A nil table, or a byte
// with no entry in it, passes through unchanged. Used both directions: with
// MailConversionJPToEn on ingest from a Japanese cartridge, and with
// MailConversionEnToJP on egress to one.
func TranslateMailSection(buf []uint8, table map[uint8]uint8) []uint8 {
	out := append([]uint8(nil), buf...)

	if table == nil {
		return out
	}

	for slot := 0; slot*mailMessageStride+mailMessageBodyLen <= len(out); slot++ {
		base := slot * mailMessageStride

		for i := 0; i < mailMessageBodyLen; i++ {
			if t, ok := table[out[base+i]]; ok {
				out[base+i] = t
			}
		}
	}

	return out
}
