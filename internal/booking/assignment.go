package booking

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

// AssignmentProvider reserves physical lockers. Implementations must honor
// ctx cancellation.
type AssignmentProvider interface {
	Assign(ctx context.Context, count int) (models.LockerAssignment, error)
}

// SimulatedAssigner picks a random zone and a contiguous block of lockers
// after a fixed delay.
type SimulatedAssigner struct {
	delay time.Duration
	zones []models.LockerZone
	intn  func(n int) int
}

func NewSimulatedAssigner(delay time.Duration) *SimulatedAssigner {
	return &SimulatedAssigner{
		delay: delay,
		zones: models.LockerZones(),
		intn:  rand.IntN,
	}
}

// WithRand replaces the random source, for deterministic tests.
func (a *SimulatedAssigner) WithRand(intn func(n int) int) *SimulatedAssigner {
	a.intn = intn
	return a
}

func (a *SimulatedAssigner) Assign(ctx context.Context, count int) (models.LockerAssignment, error) {
	if count < models.MinLockerCount || count > models.MaxLockerCount {
		return models.LockerAssignment{}, fmt.Errorf("locker count %d out of range", count)
	}

	if a.delay > 0 {
		t := time.NewTimer(a.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return models.LockerAssignment{}, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return models.LockerAssignment{}, err
	}

	zone := a.zones[a.intn(len(a.zones))]
	start := 1 + a.intn(zone.Total-count+1)

	numbers := make([]int, count)
	for i := range numbers {
		numbers[i] = start + i
	}

	return models.LockerAssignment{
		Section:         zone.ID,
		LockerNumbers:   numbers,
		Location:        zone.Name,
		NearestEntrance: zone.NearestEntrance,
	}, nil
}
