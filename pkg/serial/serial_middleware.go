package serial

import (
	"fmt"
	"log"
	"os"
)

type middlewareFunc func(uint8) uint8

// stuckPreambleThreshold is how many consecutive section-starter bytes
// (§4.6 "Per-section preamble") a cartridge can echo before
// SectionStarterCounter logs a warning: a real cartridge answers with a
// non-starter payload byte within a handful of exchanges, so a long run
// means the link is stuck at a section boundary rather than mid-transfer.
const stuckPreambleThreshold = 64

// SectionStarterCounter is a read middleware that tracks a run of
// consecutive section-preamble bytes (0xFD for sections 0-2, 0x20 for the
// Gen 2 mail section, §4.6) coming back from the cartridge, warning once
// the run looks stuck rather than mid-handshake.
type SectionStarterCounter struct {
	starter uint8
	run     int
	id      uint64
}

// NewSectionStarterCounter builds a counter for the given client and
// section-starter byte.
func NewSectionStarterCounter(c *Client, starter uint8) *SectionStarterCounter {
	return &SectionStarterCounter{starter: starter, id: c.id}
}

// Middleware returns the read-middleware function to install with
// (*Client).AddReadMiddleware.
func (s *SectionStarterCounter) Middleware() middlewareFunc {
	return func(b uint8) uint8 {
		if b != s.starter {
			s.run = 0
			return b
		}

		s.run++

		if s.run == stuckPreambleThreshold {
			log.Printf("client %d: %d consecutive 0x%02X starter bytes, link may be stuck", s.id, s.run, s.starter)
		}

		return b
	}
}

// Run reports the current consecutive-starter-byte count.
func (s *SectionStarterCounter) Run() int {
	return s.run
}

func AddLoggerMiddleware(c *Client, logFile string) error {
	baseName := logFile + "_" + fmt.Sprintf("%02d", c.id)

	readFile, err := os.Create(baseName + "_read.dat")

	if err != nil {
		return err
	}

	writeFile, err := os.Create(baseName + "_write.dat")

	if err != nil {
		return err
	}

	c.AddReadMiddleware(func(b uint8) uint8 {
		if _, err := readFile.Write([]uint8{b}); err != nil {
			log.Println(err)
		}

		return b
	})

	c.AddWriteMiddleware(func(b uint8) uint8 {
		if _, err := writeFile.Write([]uint8{b}); err != nil {
			log.Println(err)
		}

		return b
	})

	return nil
}
