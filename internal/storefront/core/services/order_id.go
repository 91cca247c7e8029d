package services

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator produces order identifiers.
type IDGenerator interface {
	NewOrderID() string
}

// TimestampIDGenerator yields ORDER-<unix millis> ids. Within one process the
// millisecond value is strictly increasing: a call landing in an already used
// millisecond takes the next free one.
type TimestampIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewTimestampIDGenerator() *TimestampIDGenerator {
	return &TimestampIDGenerator{now: time.Now}
}

func (g *TimestampIDGenerator) NewOrderID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return "ORDER-" + strconv.FormatInt(ms, 10)
}
