package pokemon

import "testing"

func TestCreateRestorePatchesRoundTrip(t *testing.T) {
	original := make([]uint8, 50)

	for i := range original {
		original[i] = uint8(i)
	}

	original[3] = 0xFE
	original[20] = 0xFE
	original[49] = 0xFE

	buf := append([]uint8(nil), original...)

	patches := CreatePatches(buf, 0)

	for _, i := range []int{3, 20, 49} {
		if buf[i] != 0xFF {
			t.Errorf("offset %d: got 0x%02X, want 0xFF after CreatePatches", i, buf[i])
		}
	}

	RestorePatches(buf, patches, 0)

	for i := range buf {
		if buf[i] != original[i] {
			t.Errorf("offset %d: got 0x%02X, want 0x%02X after RestorePatches", i, buf[i], original[i])
		}
	}
}

func TestPatchListMarshalParseRoundTrip(t *testing.T) {
	buf := make([]uint8, 300)
	buf[5] = 0xFE
	buf[300-1-5] = 0xFE // second page

	patches := CreatePatches(buf, 0)

	list := patches.Marshal(gen1PatchListSize)

	reparsed := list.Parse()

	var got []int

	for n := reparsed; n != nil; n = n.next {
		got = append(got, n.index)
	}

	want := []int{5, 300 - 1 - 5}

	if len(got) != len(want) {
		t.Fatalf("got %d offsets %v, want %d offsets %v", len(got), got, len(want), want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offset %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNewPatchListIsEmptyList(t *testing.T) {
	list := NewPatchList(gen1PatchListSize)

	if parsed := list.Parse(); parsed != nil {
		t.Errorf("empty patch list parsed to a non-nil chain: %+v", parsed)
	}
}

func TestMarshalPatchedNoPatches(t *testing.T) {
	buf := make([]uint8, 10)

	for i := range buf {
		buf[i] = uint8(i + 1)
	}

	list := MarshalPatched(buf, 0, gen1PatchListSize)

	if parsed := list.Parse(); parsed != nil {
		t.Errorf("unpatched buffer produced a non-empty patch list: %+v", parsed)
	}
}
