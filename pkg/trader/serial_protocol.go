package trader

// SerialPort is the byte/word link the Mediator drives (§4.1/C1):
// *serial.Client (Unix-socket mock cartridge) and *serial.Adapter (real
// USB hardware) both satisfy it structurally.
type SerialPort interface {
	Read() uint8
	Write(b uint8)
	Alive() bool
	ID() uint64
}

// stableReads is how many consecutive identical reads the Mediator
// requires before trusting a cartridge-driven user event, filtering
// cartridge glitches (§4.8.1 step 1, §4.8.3 "confirmed only after 10
// consecutive identical reads").
const stableReads = 10

// waitStable calls read() until the same value satisfying valid() has been
// observed stableReads times in a row, ignoring the two known non-values
// 0xFE/0x00 along the way. It writes nothing itself; whatever read() does
// is the only traffic on the link.
func waitStable(read func() uint8, valid func(uint8) bool) uint8 {
	var last uint8
	count := 0

	for {
		b := read()

		if b == 0xFE || b == 0x00 || !valid(b) {
			count = 0
			continue
		}

		if b == last {
			count++
		} else {
			last = b
			count = 1
		}

		if count >= stableReads {
			return last
		}
	}
}

// stepSequence drives a fixed (send, accept) byte pair sequence: it
// re-exchanges send[i] until the cartridge echoes accept[i], then advances
// to i+1 (§4.8 "Known sentinels"). This is the generalized form of the
// teacher's echo-until-compound stage: a fixed script instead of a
// variable-length suffix match.
func stepSequence(link SerialPort, send, accept []uint8) {
	for i := range send {
		for {
			link.Write(send[i])

			if link.Read() == accept[i] {
				break
			}
		}
	}
}

// Gen 1 trade-menu byte range (§4.8.1 "0x60+i (Gen 1)").
const (
	Gen1SelectFirst = uint8(0x60)
	Gen1SelectLast  = uint8(0x66)
	Gen1Cancel      = uint8(0x6F)
	Gen1Decline     = uint8(0x61)
	Gen1Accept      = uint8(0x62)
)

// Gen 2 trade-menu byte range (§4.8.1 "0x70+i (Gen 2)").
const (
	Gen2SelectFirst = uint8(0x70)
	Gen2SelectLast  = uint8(0x76)
	Gen2Cancel      = uint8(0x7F)
	Gen2Decline     = uint8(0x71)
	Gen2Accept      = uint8(0x72)
)

// successFirst/successLast bound the success-byte range shared by both
// generations (§4.8.1 "success byte 0x90..0x9F").
const (
	successFirst = uint8(0x90)
	successLast  = uint8(0x9F)
)

func isSuccessByte(b uint8) bool {
	return b >= successFirst && b <= successLast
}

// enteringRoomSend/Accept and sittingSend/Accept are the literal sentinel
// sequences of §4.8's state table, shared by Gen 1 and Gen 2 (the teacher's
// original simplified 0x01/0x02 "lead/follow" handshake is replaced here by
// the real cartridge byte sequences).
var (
	enteringRoomSend   = []uint8{0x01, 0x61, 0xD1, 0x00, 0xFE}
	enteringRoomAccept = []uint8{0x61, 0xD1, 0x00, 0xFE, 0xFE}

	sittingSend   = []uint8{0x75, 0x75, 0x76}
	sittingAccept = []uint8{0x75, 0x00, 0xFD}
)
