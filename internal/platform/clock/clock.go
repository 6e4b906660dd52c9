package clock

import (
	"time"

	bclock "github.com/benbjohnson/clock"
)

// Clock abstracts time to keep lifecycle transitions deterministic in tests.
// *bclock.Mock satisfies it.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

var wall = bclock.New()

func (SystemClock) Now() time.Time {
	return wall.Now().UTC()
}
