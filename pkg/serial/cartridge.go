package serial

import "encoding/binary"

// VoltageMode selects the link-cable adapter's signal level for a given
// cartridge generation (§4.1 "set_voltage(mode)").
type VoltageMode uint8

const (
	Voltage5V = VoltageMode(0) // Gen 1/2
	Voltage3V = VoltageMode(1) // Gen 3 (GBA)
)

// BytePort is anything that can perform one cartridge byte exchange; both
// *Client (the Unix-socket mock/test harness) and the real USB adapter
// backend (adapter_serial.go) implement it.
type BytePort interface {
	Read() uint8
	Write(b uint8)
}

// CartridgeLink is the §4.1/C1 byte/word exchange primitive used by
// pkg/exchange and pkg/trader. It is single-threaded from the caller's
// perspective (§4.1 "The component is single-threaded from the
// Mediator's perspective").
type CartridgeLink struct {
	port BytePort
}

// NewCartridgeLink wraps port as a CartridgeLink.
func NewCartridgeLink(port BytePort) *CartridgeLink {
	return &CartridgeLink{port: port}
}

// Exchange performs one Gen 1/2 byte exchange: every write produces
// exactly one read (§4.1).
func (c *CartridgeLink) Exchange(out uint8) uint8 {
	c.port.Write(out)
	return c.port.Read()
}

// Exchange32 performs one Gen 3 32-bit word exchange by driving four
// Exchange calls big-endian (the physical link is still a serial shift
// register; Gen 3's SPI transport just moves 4 bytes per clocked word
// instead of 1, §4.1/§4.8.3).
func (c *CartridgeLink) Exchange32(out uint32) uint32 {
	var outBuf, inBuf [4]byte

	binary.BigEndian.PutUint32(outBuf[:], out)

	for i := 0; i < 4; i++ {
		inBuf[i] = c.Exchange(outBuf[i])
	}

	return binary.BigEndian.Uint32(inBuf[:])
}

// SetVoltage is a no-op unless the underlying port supports it (the real
// USB adapter backend does; the Unix-socket mock harness does not need
// to, since it has no physical signal level).
func (c *CartridgeLink) SetVoltage(mode VoltageMode) {
	if v, ok := c.port.(interface{ SetVoltage(VoltageMode) }); ok {
		v.SetVoltage(mode)
	}
}
