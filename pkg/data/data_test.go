package data

import "testing"

func TestBitmap256SetAll(t *testing.T) {
	var bm Bitmap256

	bm.SetAll([]uint8{1, 5, 255})

	if !bm[1] || !bm[5] || !bm[255] {
		t.Error("expected members not set")
	}

	if bm[0] || bm[2] {
		t.Error("non-members unexpectedly set")
	}
}
