// Package pool holds the authoritative slot set of one (category, service, date) key.
//
// A Pool is not safe for concurrent use. The availability channel owns every
// pool and serializes access to it with the per-key lock, which gives the
// single-writer discipline the reservation protocol relies on.
package pool

import (
	"fmt"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/clock"
	"slotbook-service/internal/pkg/exceptions"
	"time"
)

type Pool struct {
	key        models.PoolKey
	slots      []models.Slot
	index      map[string]int
	version    uint64
	lastUpdate time.Time
	clock      clock.Clock
}

type Option func(*Pool)

func WithClock(c clock.Clock) Option {
	return func(p *Pool) {
		p.clock = c
	}
}

// New seeds a pool with generated slots, keeping their order.
func New(key models.PoolKey, slots []models.Slot, opts ...Option) (*Pool, error) {
	p := &Pool{
		key:   key,
		slots: make([]models.Slot, 0, len(slots)),
		index: make(map[string]int, len(slots)),
		clock: clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, s := range slots {
		if _, dup := p.index[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate slot id %s", exceptions.ErrInvalidConfiguration, s.ID)
		}
		p.index[s.ID] = len(p.slots)
		p.slots = append(p.slots, s.Clone())
	}
	p.lastUpdate = p.clock.Now()
	return p, nil
}

func (p *Pool) Key() models.PoolKey {
	return p.key
}

// Version increases on every successful mutation.
func (p *Pool) Version() uint64 {
	return p.version
}

func (p *Pool) LastUpdate() time.Time {
	return p.lastUpdate
}

func (p *Pool) Len() int {
	return len(p.slots)
}

func (p *Pool) Get(id string) (models.Slot, bool) {
	i, ok := p.index[id]
	if !ok {
		return models.Slot{}, false
	}
	return p.slots[i].Clone(), true
}

// ApplyDelta merges the fields present in d. Metadata merges are additive:
// only the keys carried by the delta are overwritten.
func (p *Pool) ApplyDelta(d models.SlotDelta) (models.Slot, error) {
	i, ok := p.index[d.SlotID]
	if !ok {
		return models.Slot{}, fmt.Errorf("%w: %s", exceptions.ErrUnknownSlot, d.SlotID)
	}

	s := &p.slots[i]
	if d.Available != nil {
		s.Available = *d.Available
	}
	if d.Capacity != nil {
		capacity := *d.Capacity
		s.Capacity = &capacity
	}
	if len(d.Metadata) > 0 {
		if s.Metadata == nil {
			s.Metadata = make(map[string]string, len(d.Metadata))
		}
		for k, v := range d.Metadata {
			s.Metadata[k] = v
		}
	}
	p.touch()
	return s.Clone(), nil
}

// Restore puts back an exact copy of a previously captured slot.
func (p *Pool) Restore(snapshot models.Slot) (models.Slot, error) {
	i, ok := p.index[snapshot.ID]
	if !ok {
		return models.Slot{}, fmt.Errorf("%w: %s", exceptions.ErrUnknownSlot, snapshot.ID)
	}
	p.slots[i] = snapshot.Clone()
	p.touch()
	return snapshot.Clone(), nil
}

// Snapshot returns a chronological deep copy of every slot.
func (p *Pool) Snapshot() []models.Slot {
	out := make([]models.Slot, len(p.slots))
	for i, s := range p.slots {
		out[i] = s.Clone()
	}
	return out
}

// Run returns the contiguous run of n slots starting at startID, in pool order.
func (p *Pool) Run(startID string, n int) ([]models.Slot, error) {
	start, ok := p.index[startID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", exceptions.ErrUnknownSlot, startID)
	}
	if n < 1 || start+n > len(p.slots) {
		return nil, fmt.Errorf("%w: %d units requested from %s, %d available", exceptions.ErrInsufficientRun, n, startID, len(p.slots)-start)
	}
	out := make([]models.Slot, n)
	for i := range out {
		out[i] = p.slots[start+i].Clone()
	}
	return out, nil
}

func (p *Pool) touch() {
	p.version++
	p.lastUpdate = p.clock.Now()
}
