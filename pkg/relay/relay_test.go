package relay

import (
	"bytes"
	"testing"
)

func newTestClient() *Client {
	return &Client{
		conn:            &bytes.Buffer{},
		inbox:           map[Tag][]byte{},
		outbox:          map[Tag][]byte{},
		outboundCounter: map[Tag]uint8{},
		inboundSeen:     map[Tag]bool{},
		inboundExpected: map[Tag]uint8{},
		closed:          make(chan struct{}),
	}
}

func TestTagRoundTrip(t *testing.T) {
	tag := NewTag("CHC1")

	if got := tag.String(); got != "CHC1" {
		t.Errorf("got %q, want %q", got, "CHC1")
	}
}

func TestCounterWindowAccepts(t *testing.T) {
	cases := []struct {
		c, expected uint8
		want        bool
	}{
		{1, 0, true},
		{128, 0, true},
		{129, 0, false},
		{0, 0, true}, // same value, still within window
		{255, 0, false},
		{0, 200, true},
	}

	for _, tc := range cases {
		if got := counterWindow(tc.c, tc.expected); got != tc.want {
			t.Errorf("counterWindow(%d, %d): got %v, want %v", tc.c, tc.expected, got, tc.want)
		}
	}
}

func TestGetWithCounterFirstObservationSetsExpectation(t *testing.T) {
	c := newTestClient()
	tag := NewTag("SUC1")

	c.inbox[tag] = []byte{200, 0xAA, 0xBB}

	body, ok := c.GetWithCounter(tag)

	if !ok {
		t.Fatal("first observation not accepted")
	}

	if !bytes.Equal(body, []byte{0xAA, 0xBB}) {
		t.Errorf("body: got %v, want [0xAA 0xBB]", body)
	}

	if c.inboundExpected[tag] != 200 {
		t.Errorf("expected counter: got %d, want 200 (not hardcoded 0)", c.inboundExpected[tag])
	}
}

func TestGetWithCounterRejectsRepeat(t *testing.T) {
	c := newTestClient()
	tag := NewTag("ACP1")

	c.inbox[tag] = []byte{5, 0x01}
	c.GetWithCounter(tag)

	// Same frame observed again (our own reflection).
	if _, ok := c.GetWithCounter(tag); ok {
		t.Error("repeated counter accepted as a new message")
	}
}

func TestGetWithCounterRejectsStale(t *testing.T) {
	c := newTestClient()
	tag := NewTag("MVS1")

	c.inbox[tag] = []byte{150, 0x01}
	c.GetWithCounter(tag)

	// 100 - 150 mod 256 = 206 > 128: stale.
	c.inbox[tag] = []byte{100, 0x02}

	if _, ok := c.GetWithCounter(tag); ok {
		t.Error("stale counter accepted")
	}
}

func TestGetWithCounterAcceptsAdvance(t *testing.T) {
	c := newTestClient()
	tag := NewTag("CHC2")

	c.inbox[tag] = []byte{10, 0x01}
	c.GetWithCounter(tag)

	c.inbox[tag] = []byte{11, 0x02}

	body, ok := c.GetWithCounter(tag)

	if !ok {
		t.Fatal("advancing counter rejected")
	}

	if !bytes.Equal(body, []byte{0x02}) {
		t.Errorf("body: got %v, want [0x02]", body)
	}
}

func TestSendWithCounterIncrementsPerTag(t *testing.T) {
	c := newTestClient()
	tag := NewTag("CHC1")

	if err := c.SendWithCounter(tag, []byte{0xAA}); err != nil {
		t.Fatalf("send 1: %s", err)
	}

	if err := c.SendWithCounter(tag, []byte{0xBB}); err != nil {
		t.Fatalf("send 2: %s", err)
	}

	if c.outboundCounter[tag] != 2 {
		t.Errorf("outbound counter: got %d, want 2", c.outboundCounter[tag])
	}
}

func TestResetInboundCounterClearsExpectation(t *testing.T) {
	c := newTestClient()
	tag := NewTag("ASK1")

	c.inbox[tag] = []byte{50, 0x01}
	c.GetWithCounter(tag)

	c.ResetInboundCounter(tag)

	if c.inboundSeen[tag] {
		t.Error("inboundSeen not cleared by ResetInboundCounter")
	}

	// After reset, any counter value is accepted as a fresh first
	// observation rather than being compared to the stale expectation.
	c.inbox[tag] = []byte{5, 0x02}

	if _, ok := c.GetWithCounter(tag); !ok {
		t.Error("first observation after reset not accepted")
	}
}

func TestPeekReturnsRawInbox(t *testing.T) {
	c := newTestClient()
	tag := NewTag("FLL1")

	if _, ok := c.Peek(tag); ok {
		t.Error("empty inbox reported a value")
	}

	c.inbox[tag] = []byte{1, 2, 3}

	v, ok := c.Peek(tag)

	if !ok || !bytes.Equal(v, []byte{1, 2, 3}) {
		t.Errorf("got (%v, %v), want ([1 2 3], true)", v, ok)
	}
}
