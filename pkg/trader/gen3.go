package trader

import (
	"log"
	"time"

	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
	"github.com/starlarkus/gblink-pokemon-web/pkg/serial"
)

// Gen 3 32-bit control-flag frame layout (§4.8.3): the top byte carries
// flag bits, the next byte a block position (data frames) or is folded
// into the two 12-bit start/end fields (ask frames), and the bottom
// 16 bits carry a block value.
const (
	gen3FlagSending         = uint32(0x10) << 24
	gen3FlagDone            = uint32(0x20) << 24
	gen3FlagNotDone         = uint32(0x40) << 24
	gen3FlagInPartyTrading  = uint32(0x80) << 24
	gen3FlagAsking = uint32(0x0C) << 24
	gen3BlockCount = 448
)

var gen3SectionBytes = pokemon.Gen3SectionLengths[0]

func encodeGen3DataFrame(position int, value uint16, done bool) uint32 {
	flags := gen3FlagSending

	if done {
		flags |= gen3FlagDone
	} else {
		flags |= gen3FlagNotDone
	}

	return flags | uint32(uint8(position))<<16 | uint32(value)
}

func encodeGen3AskFrame(start, end int) uint32 {
	packed := (uint32(start) & 0xFFF) | (uint32(end)&0xFFF)<<12

	return gen3FlagAsking | packed
}

type gen3Frame struct {
	asking   bool
	sending  bool
	position int
	value    uint16
	start    int
	end      int
}

func decodeGen3Frame(w uint32) gen3Frame {
	flagsByte := uint8(w >> 24)

	f := gen3Frame{
		sending: flagsByte&0x10 != 0,
		asking:  flagsByte&0x0C == 0x0C,
	}

	if f.sending {
		f.position = int(uint8(w >> 16))
		f.value = uint16(w)
	} else {
		packed := w & 0xFFFFFF
		f.start = int(packed & 0xFFF)
		f.end = int((packed >> 12) & 0xFFF)
	}

	return f
}

// transferSection3 runs the Gen 3 block-transfer sub-protocol (§4.8.3):
// it cycles through outBlocks, sending each to the cartridge as a data
// frame and recording every data frame the cartridge answers with, until
// gen3BlockCount distinct positions have been recorded or 15 seconds have
// passed. It sends no ask frames: a missing block is only picked up if
// the cartridge sends it again on its own.
func transferSection3(cart *serial.CartridgeLink, outBlocks [gen3BlockCount]uint16) [gen3BlockCount]uint16 {
	var in [gen3BlockCount]uint16

	have := make([]bool, gen3BlockCount)
	received := 0
	sendPos := 0

	deadline := time.Now().Add(15 * time.Second)

	for received < gen3BlockCount && time.Now().Before(deadline) {
		done := received == gen3BlockCount-1

		word := encodeGen3DataFrame(sendPos, outBlocks[sendPos], done)

		resp := cart.Exchange32(word)

		f := decodeGen3Frame(resp)

		if f.sending && !have[f.position] {
			have[f.position] = true
			in[f.position] = f.value
			received++
		}

		sendPos = (sendPos + 1) % gen3BlockCount
	}

	return in
}

func blocksToBytes(blocks [gen3BlockCount]uint16) []byte {
	out := make([]byte, gen3SectionBytes)

	for i, v := range blocks {
		out[i*2] = uint8(v)
		out[i*2+1] = uint8(v >> 8)
	}

	return out
}

func bytesToBlocks(buf []byte) [gen3BlockCount]uint16 {
	var blocks [gen3BlockCount]uint16

	for i := range blocks {
		if i*2+1 >= len(buf) {
			break
		}

		blocks[i] = uint16(buf[i*2]) | uint16(buf[i*2+1])<<8
	}

	return blocks
}

// startGen3 is the Gen 3 analogue of Start: it negotiates mode once, then
// loops a buffered section transfer (§4.8.3's block protocol is always
// run against a fully-known peer payload — there is no per-block peer
// rendezvous channel in the tag catalogue, only the buffered FL3S blob)
// followed by the Gen 3 trade menu.
func (m *Mediator) startGen3() {
	cart := serial.NewCartridgeLink(m.link)
	cart.SetVoltage(serial.Voltage3V)

	for !m.stopTrade && m.link.Alive() {
		own := m.runSection3()

		if own == nil {
			break
		}

		if !m.runMenu3(own) {
			break
		}

		m.runEndTrade3()
	}

	log.Printf("client %d: gen3 mediator stopped", m.link.ID())
}

// runSection3 publishes our own party over FL3S, waits for the peer's,
// and drives the cartridge block transfer using the peer's bytes as the
// incoming payload.
func (m *Mediator) runSection3() []byte {
	ownSection := m.tables3DefaultOrCached()

	m.peer.SetOutbox(m.tag("FL3S"), ownSection)

	peerSection := m.waitFL3S()

	outBlocks := bytesToBlocks(peerSection)

	inBlocks := transferSection3(cartLink3(m.link), outBlocks)

	own := blocksToBytes(inBlocks)

	m.cachedPeerSections = peerSection
	m.havePeerSections = true

	return own
}

func cartLink3(link SerialPort) *serial.CartridgeLink {
	return serial.NewCartridgeLink(link)
}

func (m *Mediator) tables3DefaultOrCached() []byte {
	if m.tables != nil && len(m.tables.DefaultParty) == gen3SectionBytes {
		return append([]byte(nil), m.tables.DefaultParty...)
	}

	return make([]byte, gen3SectionBytes)
}

func (m *Mediator) waitFL3S() []byte {
	tag := m.tag("FL3S")

	for i := 0; i < pollAttempts; i++ {
		_ = m.peer.Pull(tag)

		sleepPoll()

		raw, ok := m.peer.Peek(tag)

		if ok && len(raw) == gen3SectionBytes {
			return raw
		}
	}

	return make([]byte, gen3SectionBytes)
}
