package booking

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const BookingIDPrefix = "HCM"

// IDGenerator issues booking ids from a millisecond clock that never
// repeats or goes backwards within the process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	return BookingIDPrefix + strings.ToUpper(strconv.FormatInt(ms, 36))
}

// Generations issues request tokens for locker assignments and checkout
// submissions. Tokens are unique across every session in the process, so a
// cleared session never reuses one still held by an in-flight request.
type Generations struct {
	last atomic.Uint64
}

// NewGenerations starts counting after seed. Seeding from the clock keeps
// tokens from an earlier process out of reach.
func NewGenerations(seed uint64) *Generations {
	g := &Generations{}
	g.last.Store(seed)
	return g
}

func (g *Generations) Next() uint64 {
	return g.last.Add(1)
}
