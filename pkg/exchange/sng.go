package exchange

import "encoding/binary"

// Slot is one (position, value, extra) tuple inside an SNG frame
// (Glossary "SNG slot"). Extra carries the section index for redundancy
// across section boundaries (§8.2 S5).
type Slot struct {
	Pos   uint16
	Val   uint8
	Extra uint8
}

const slotSize = 4 // pos(2) + val(1) + extra(1)

// NewFormatSlots/OldFormatSlots are the slot counts of the two SNG wire
// formats (§4.6 "The SNG message carries multiple (pos, val) slots per
// frame for redundancy").
const (
	NewFormatSlots = 8
	OldFormatSlots = 2
	NewFormatBytes = NewFormatSlots * slotSize
	OldFormatBytes = OldFormatSlots * slotSize
)

// EncodeSlots packs up to n slots into a wire-format SNG payload of the
// requested frame size (NewFormatBytes or OldFormatBytes). Unused trailing
// slots are zero-filled.
func EncodeSlots(slots []Slot, frameBytes int) []byte {
	buf := make([]byte, frameBytes)

	for i := 0; i*slotSize < frameBytes && i < len(slots); i++ {
		off := i * slotSize
		binary.LittleEndian.PutUint16(buf[off:off+2], slots[i].Pos)
		buf[off+2] = slots[i].Val
		buf[off+3] = slots[i].Extra
	}

	return buf
}

// DecodeSlots auto-detects the SNG wire format from the payload length
// (§4.6 "Auto-detect the format from the first well-formed peer SNG
// frame") and unpacks its slots.
func DecodeSlots(payload []byte) []Slot {
	n := len(payload) / slotSize

	slots := make([]Slot, 0, n)

	for i := 0; i < n; i++ {
		off := i * slotSize

		slots = append(slots, Slot{
			Pos:   binary.LittleEndian.Uint16(payload[off : off+2]),
			Val:   payload[off+2],
			Extra: payload[off+3],
		})
	}

	return slots
}

// IsNewFormat reports whether payload matches the 32-byte/8-slot format
// rather than the old 2-slot format.
func IsNewFormat(payload []byte) bool {
	return len(payload) >= NewFormatBytes
}
