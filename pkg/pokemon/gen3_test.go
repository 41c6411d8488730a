package pokemon

import "testing"

func buildRecordGen3(t *testing.T, growth SubstructGrowthData, attacks SubstructAttacksData, evs SubstructEVsData, misc SubstructMiscData, pid, otid uint32) *RecordGen3 {
	t.Helper()

	d := &DecodedGen3{
		Record:  &RecordGen3{PID: pid, OTID: otid},
		Growth:  growth,
		Attacks: attacks,
		EVs:     evs,
		Misc:    misc,
		PermIdx: int(pid % 24),
	}

	r, err := d.EncodeGen3()

	if err != nil {
		t.Fatalf("EncodeGen3: %s", err)
	}

	return r
}

func TestDecodeGen3RoundTrip(t *testing.T) {
	growth := SubstructGrowthData{Species: 25, HeldItem: 0, Experience: 1000, PPBonuses: 0, Friendship: 70}
	attacks := SubstructAttacksData{Moves: [4]uint16{85, 98, 0, 0}, PP: [4]uint8{15, 20, 0, 0}}
	evs := SubstructEVsData{EVs: [6]uint8{1, 2, 3, 4, 5, 6}}
	misc := SubstructMiscData{MetLocation: 10, IVsEggAndAbility: 0x1F}

	for pid := uint32(0); pid < 24; pid++ {
		r := buildRecordGen3(t, growth, attacks, evs, misc, pid, 0xCAFEBABE)

		d, err := DecodeGen3(r)

		if err != nil {
			t.Fatalf("pid %d: DecodeGen3: %s", pid, err)
		}

		if !d.Valid {
			t.Errorf("pid %d: checksum did not validate after round trip", pid)
		}

		if d.Growth != growth {
			t.Errorf("pid %d: growth mismatch: got %+v, want %+v", pid, d.Growth, growth)
		}

		if d.Attacks != attacks {
			t.Errorf("pid %d: attacks mismatch: got %+v, want %+v", pid, d.Attacks, attacks)
		}

		if d.EVs != evs {
			t.Errorf("pid %d: evs mismatch: got %+v, want %+v", pid, d.EVs, evs)
		}

		if d.Misc != misc {
			t.Errorf("pid %d: misc mismatch: got %+v, want %+v", pid, d.Misc, misc)
		}
	}
}

func TestDecodeGen3ChecksumInvalid(t *testing.T) {
	r := buildRecordGen3(t, SubstructGrowthData{Species: 1}, SubstructAttacksData{}, SubstructEVsData{}, SubstructMiscData{}, 0, 0)

	r.Checksum ^= 0xFFFF

	d, err := DecodeGen3(r)

	if err != nil {
		t.Fatalf("DecodeGen3: %s", err)
	}

	if d.Valid {
		t.Error("corrupted checksum reported Valid=true")
	}
}

func TestSubstructSlotIsBijective(t *testing.T) {
	for perm := 0; perm < 24; perm++ {
		seen := map[int]bool{}

		for _, kind := range []SubstructKind{SubstructGrowth, SubstructAttacks, SubstructEVs, SubstructMisc} {
			slot := SubstructSlot(perm, kind)

			if slot < 0 || slot > 3 {
				t.Fatalf("perm %d kind %d: slot %d out of range", perm, kind, slot)
			}

			if seen[slot] {
				t.Fatalf("perm %d: slot %d assigned to more than one substructure", perm, slot)
			}

			seen[slot] = true
		}
	}
}

func TestUnownFormIndexInRange(t *testing.T) {
	for _, pid := range []uint32{0, 1, 0xDEADBEEF, 0xFFFFFFFF} {
		if form := UnownFormIndex(pid); form >= 28 {
			t.Errorf("pid 0x%X: form %d out of range [0,28)", pid, form)
		}
	}
}

func TestCalcStatHPShedinja(t *testing.T) {
	if hp := CalcStat(1, 31, 252, 100, 1.0, true); hp != 1 {
		t.Errorf("base-1 HP species: got %d, want 1", hp)
	}
}

func TestValidateGen3SpeciesEgg(t *testing.T) {
	d := &DecodedGen3{Misc: SubstructMiscData{IVsEggAndAbility: 1 << 31}, Growth: SubstructGrowthData{Species: 1}}

	species, ok := d.ValidateGen3Species()

	if !ok || species != EggSpeciesSentinel {
		t.Errorf("egg: got (species=%d, ok=%v), want (%d, true)", species, ok, EggSpeciesSentinel)
	}
}

func TestValidateGen3SpeciesOutOfRange(t *testing.T) {
	d := &DecodedGen3{Growth: SubstructGrowthData{Species: MaxValidSpeciesGen3 + 1}}

	if _, ok := d.ValidateGen3Species(); ok {
		t.Error("species beyond MaxValidSpeciesGen3 reported valid")
	}
}
