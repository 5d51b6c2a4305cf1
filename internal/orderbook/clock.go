package orderbook

import "time"

// Clock abstracts "now" so tests can exercise MaxOrderAge expiry without
// sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default, real-time Clock.
var SystemClock Clock = systemClock{}
