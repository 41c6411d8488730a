package serial

import "testing"

type fakePort struct {
	writes      []uint8
	reads       []uint8
	readIdx     int
	voltageSet  VoltageMode
	voltageSeen bool
}

func (f *fakePort) Write(b uint8) {
	f.writes = append(f.writes, b)
}

func (f *fakePort) Read() uint8 {
	if f.readIdx >= len(f.reads) {
		return NoData
	}

	b := f.reads[f.readIdx]
	f.readIdx++

	return b
}

func TestExchangeWritesThenReads(t *testing.T) {
	port := &fakePort{reads: []uint8{0x42}}
	link := NewCartridgeLink(port)

	got := link.Exchange(0x99)

	if got != 0x42 {
		t.Errorf("got 0x%02X, want 0x42", got)
	}

	if len(port.writes) != 1 || port.writes[0] != 0x99 {
		t.Errorf("writes: got %v, want [0x99]", port.writes)
	}
}

func TestExchange32IsFourBigEndianBytes(t *testing.T) {
	port := &fakePort{reads: []uint8{0xDE, 0xAD, 0xBE, 0xEF}}
	link := NewCartridgeLink(port)

	got := link.Exchange32(0x12345678)

	if got != 0xDEADBEEF {
		t.Errorf("got 0x%08X, want 0xDEADBEEF", got)
	}

	want := []uint8{0x12, 0x34, 0x56, 0x78}

	for i, w := range want {
		if port.writes[i] != w {
			t.Errorf("write %d: got 0x%02X, want 0x%02X", i, port.writes[i], w)
		}
	}
}

type voltagePort struct {
	fakePort
}

func (v *voltagePort) SetVoltage(mode VoltageMode) {
	v.voltageSet = mode
	v.voltageSeen = true
}

func TestSetVoltagePropagatesToCapablePort(t *testing.T) {
	port := &voltagePort{}
	link := NewCartridgeLink(port)

	link.SetVoltage(Voltage3V)

	if !port.voltageSeen || port.voltageSet != Voltage3V {
		t.Error("SetVoltage did not reach the underlying port")
	}
}

func TestSetVoltageNoOpOnIncapablePort(t *testing.T) {
	port := &fakePort{}
	link := NewCartridgeLink(port)

	// Must not panic when the port doesn't implement SetVoltage.
	link.SetVoltage(Voltage5V)
}
