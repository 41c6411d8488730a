package exchange

import "testing"

func TestEncodeDecodeSlotsRoundTrip(t *testing.T) {
	slots := []Slot{
		{Pos: 0, Val: 0x41, Extra: 1},
		{Pos: 17, Val: 0xFE, Extra: 1},
		{Pos: 255, Val: 0x00, Extra: 2},
	}

	payload := EncodeSlots(slots, NewFormatBytes)

	if len(payload) != NewFormatBytes {
		t.Fatalf("payload length: got %d, want %d", len(payload), NewFormatBytes)
	}

	decoded := DecodeSlots(payload)

	if len(decoded) != NewFormatSlots {
		t.Fatalf("decoded slot count: got %d, want %d", len(decoded), NewFormatSlots)
	}

	for i, want := range slots {
		if decoded[i] != want {
			t.Errorf("slot %d: got %+v, want %+v", i, decoded[i], want)
		}
	}
}

func TestIsNewFormat(t *testing.T) {
	if !IsNewFormat(make([]byte, NewFormatBytes)) {
		t.Error("new-format-sized payload not detected as new format")
	}

	if IsNewFormat(make([]byte, OldFormatBytes)) {
		t.Error("old-format-sized payload detected as new format")
	}
}

func TestEncodeSlotsTruncatesToFrameSize(t *testing.T) {
	slots := make([]Slot, NewFormatSlots)

	for i := range slots {
		slots[i] = Slot{Pos: uint16(i), Val: uint8(i), Extra: 0}
	}

	payload := EncodeSlots(slots, OldFormatBytes)

	if len(payload) != OldFormatBytes {
		t.Fatalf("payload length: got %d, want %d", len(payload), OldFormatBytes)
	}

	if got := DecodeSlots(payload); len(got) != OldFormatSlots {
		t.Errorf("decoded slot count: got %d, want %d", len(got), OldFormatSlots)
	}
}
