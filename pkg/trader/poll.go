package trader

import "time"

// pollAttempts/pollDelay bound a relay poll loop; §5 "Timeouts" gives
// sync-section polling an approximate 10 s cap, which this matches at
// pollDelay*pollAttempts.
const (
	pollAttempts = 200
	pollDelay    = 50 * time.Millisecond
)

func sleepPoll() {
	time.Sleep(pollDelay)
}
