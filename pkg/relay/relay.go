// Package relay implements the peer relay client of spec §4.2/C2: a typed
// binary message queue over a duplex connection, with a last-value-per-tag
// inbox/outbox and an optional counter-tagged framing for sequenced
// exchanges (§3.1 "Peer Message", §3.2 invariant 3).
package relay

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"
)

// Tag is a four-character channel identifier (§6.3).
type Tag [4]byte

func NewTag(s string) Tag {
	var t Tag

	copy(t[:], s)

	return t
}

func (t Tag) String() string {
	return string(t[:])
}

const (
	frameSend = 'S'
	frameGet  = 'G'
)

// Client is one peer's connection to the relay server (§4.2 "Wire
// framing"). It owns a background reader goroutine that demultiplexes
// incoming S/G frames into a single-slot-per-tag inbox, and auto-replies
// to G requests from a single-slot-per-tag outbox (§4.2 "Broadcast
// semantics").
type Client struct {
	conn io.ReadWriter

	mu             sync.Mutex
	inbox          map[Tag][]byte
	outbox         map[Tag][]byte
	outboundCounter map[Tag]uint8
	inboundSeen     map[Tag]bool
	inboundExpected map[Tag]uint8

	writeMu sync.Mutex

	closed chan struct{}
}

// New wraps conn (typically a net.Conn) as a relay Client and starts its
// background reader.
func New(conn io.ReadWriter) *Client {
	c := &Client{
		conn:            conn,
		inbox:           map[Tag][]byte{},
		outbox:          map[Tag][]byte{},
		outboundCounter: map[Tag]uint8{},
		inboundSeen:     map[Tag]bool{},
		inboundExpected: map[Tag]uint8{},
		closed:          make(chan struct{}),
	}

	go c.readLoop()

	return c
}

// Closed reports whether the background reader has observed EOF/error.
func (c *Client) Closed() <-chan struct{} {
	return c.closed
}

func (c *Client) readLoop() {
	defer close(c.closed)

	r := bufio.NewReader(c.conn)

	for {
		kind, err := r.ReadByte()

		if err != nil {
			return
		}

		var tagBuf [4]byte

		if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
			return
		}

		tag := Tag(tagBuf)

		switch kind {
		case frameSend:
			var lenBuf [2]byte

			if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
				return
			}

			n := binary.BigEndian.Uint16(lenBuf[:])

			payload := make([]byte, n)

			if n > 0 {
				if _, err := io.ReadFull(r, payload); err != nil {
					return
				}
			}

			c.mu.Lock()
			c.inbox[tag] = payload
			c.mu.Unlock()

		case frameGet:
			c.mu.Lock()
			payload, ok := c.outbox[tag]
			c.mu.Unlock()

			if ok {
				if err := c.writeSendFrame(tag, payload); err != nil {
					log.Printf("relay: auto-reply to G %s: %s", tag, err)
				}
			}

		default:
			log.Printf("relay: unknown frame kind %q, dropping connection", kind)
			return
		}
	}
}

func (c *Client) writeSendFrame(tag Tag, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if len(payload) > 0xFFFF {
		return fmt.Errorf("relay: payload too large (%d bytes)", len(payload))
	}

	buf := make([]byte, 0, 1+4+2+len(payload))
	buf = append(buf, frameSend)
	buf = append(buf, tag[:]...)

	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, payload...)

	_, err := c.conn.Write(buf)

	return err
}

func (c *Client) writeGetFrame(tag Tag) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	buf := make([]byte, 0, 5)
	buf = append(buf, frameGet)
	buf = append(buf, tag[:]...)

	_, err := c.conn.Write(buf)

	return err
}

// Send transmits payload under tag and records it as this tag's outbox
// value, so a later G from the peer gets it automatically (§4.2 "the
// client auto-replies with the current outbox value for that tag").
func (c *Client) Send(tag Tag, payload []byte) error {
	c.mu.Lock()
	c.outbox[tag] = append([]byte(nil), payload...)
	c.mu.Unlock()

	return c.writeSendFrame(tag, payload)
}

// Pull requests the peer's latest value for tag.
func (c *Client) Pull(tag Tag) error {
	return c.writeGetFrame(tag)
}

// Peek returns the current inbox value for tag without any counter
// interpretation.
func (c *Client) Peek(tag Tag) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.inbox[tag]

	return v, ok
}

// SetOutbox pre-populates tag's outbox value without sending it, used by
// the mode negotiator (§4.7) to pre-seed BUF so the peer's first G is
// immediately satisfied.
func (c *Client) SetOutbox(tag Tag, payload []byte) {
	c.mu.Lock()
	c.outbox[tag] = append([]byte(nil), payload...)
	c.mu.Unlock()
}

// counterWindow implements §3.2 invariant 3: incoming counter c is
// accepted iff (c - expected) mod 256 <= 128.
func counterWindow(c, expected uint8) bool {
	return uint8(c-expected) <= 128
}

// SendWithCounter attaches and increments tag's per-session outbound
// counter, then sends `counter | body` (§4.2 "Counter-tagged channel").
func (c *Client) SendWithCounter(tag Tag, body []byte) error {
	c.mu.Lock()
	counter := c.outboundCounter[tag]
	c.outboundCounter[tag] = counter + 1
	c.mu.Unlock()

	payload := make([]byte, 0, 1+len(body))
	payload = append(payload, counter)
	payload = append(payload, body...)

	return c.Send(tag, payload)
}

// GetWithCounter returns tag's inbox payload only if its counter advances
// the expected inbound counter within the 128-step window (§4.2). The
// very first observed counter for a tag sets the expected counter rather
// than assuming 0 (§9 "Counter initialization race").
func (c *Client) GetWithCounter(tag Tag) (body []byte, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, present := c.inbox[tag]

	if !present || len(raw) < 1 {
		return nil, false
	}

	counter := raw[0]

	if !c.inboundSeen[tag] {
		c.inboundSeen[tag] = true
		c.inboundExpected[tag] = counter
		return raw[1:], true
	}

	expected := c.inboundExpected[tag]

	if counter == expected {
		// Same frame observed again (possibly our own reflection, §4.2
		// "Broadcast semantics"); not a new message.
		return nil, false
	}

	if !counterWindow(counter, expected) {
		// Stale, per §3.2 invariant 3 / §8.1 invariant 2.
		return nil, false
	}

	c.inboundExpected[tag] = counter

	return raw[1:], true
}

// ResetInboundCounter clears the "seen" state for tag, used when a new
// trade cycle restarts an expectation (the Mediator still never resets to
// a hardcoded 0, §9).
func (c *Client) ResetInboundCounter(tag Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inboundSeen, tag)
	delete(c.inboundExpected, tag)
}
