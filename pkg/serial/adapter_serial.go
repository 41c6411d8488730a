package serial

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/term"
)

// gen1Baud/gen3Baud are the two link speeds a USB-to-GBx adapter exposes;
// the adapter itself multiplexes the physical clock/data lines, so the only
// thing this side controls is the serial baud rate and the voltage-select
// command byte it sends before a session (§4.1 "set_voltage(mode)").
const (
	gen1Baud = 9600
	gen3Baud = 115200
)

// voltageCmd is the adapter's private command byte that precedes a
// set-voltage request; real devices vary, but this mirrors the common
// USB-serial link-cable adapters in circulation.
const voltageCmd = 0xF0

// Adapter is the real-hardware CartridgeLink backend: it opens a
// USB-to-link-cable adapter through github.com/pkg/term and performs the
// byte/word exchange of §4.1/C1 over the wire.
type Adapter struct {
	mu   sync.Mutex
	port *term.Term
}

// OpenAdapter opens device (e.g. "/dev/ttyUSB0") at the baud rate
// appropriate for gen3 (true selects the Gen 3/GBA 115200 baud link,
// false selects the Gen 1/2 9600 baud link) and puts it into raw mode.
func OpenAdapter(device string, gen3 bool) (*Adapter, error) {
	baud := gen1Baud

	if gen3 {
		baud = gen3Baud
	}

	t, err := term.Open(device, term.Speed(baud), term.RawMode)

	if err != nil {
		return nil, fmt.Errorf("serial: opening adapter %s: %w", device, err)
	}

	return &Adapter{port: t}, nil
}

// Close releases the underlying device.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.port.Close()
}

// Write sends a single byte to the cartridge, discarding the echo that the
// adapter firmware loops back (Read performs the paired read).
func (a *Adapter) Write(b uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf := [1]byte{b}

	if _, err := a.port.Write(buf[:]); err != nil {
		return
	}
}

// Read blocks for the adapter's response to the most recent Write, up to a
// short deadline, returning NoData on timeout (§4.1 "A read that times out
// ... returns a 'no data' sentinel").
func (a *Adapter) Read() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()

	_ = a.port.SetReadTimeout(50 * time.Millisecond)

	var buf [1]byte

	if _, err := a.port.Read(buf[:]); err != nil {
		return NoData
	}

	return buf[0]
}

// Alive always reports true: the adapter has no link-loss detection, and a
// read that fails returns NoData instead.
func (a *Adapter) Alive() bool {
	return true
}

// ID is the client number used in log lines; a hardware session drives a
// single cartridge, so it is always 0.
func (a *Adapter) ID() uint64 {
	return 0
}

// SetVoltage asks the adapter to switch its link-cable signal level
// (§4.1). Gen 1/2 cartridges run the link at 5V; Gen 3 (GBA) runs at 3.3V.
func (a *Adapter) SetVoltage(mode VoltageMode) {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf := [2]byte{voltageCmd, uint8(mode)}

	_, _ = a.port.Write(buf[:])
}
