// Package snowflake allocates 64-bit account ids ordered by creation time.
package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	// Epoch is the custom epoch (January 1, 2024 00:00:00 UTC) in milliseconds.
	Epoch int64 = 1704067200000

	DefaultWorkerIDBits uint8 = 10
	DefaultSequenceBits uint8 = 12

	// timestamp takes the remaining 41 bits, the top bit stays clear
	maxNodeBits = 22
)

var (
	ErrInvalidWorkerID      = errors.New("worker ID exceeds maximum value")
	ErrInvalidDatacenterID  = errors.New("datacenter ID exceeds maximum value")
	ErrClockMovedBackwards  = errors.New("clock moved backwards")
	ErrInvalidBitAllocation = errors.New("invalid bit allocation: total bits must not exceed 22")
)

// IDGenerator hands out unique account ids.
type IDGenerator interface {
	NextID() (uint64, error)
}

type Config struct {
	Epoch          int64
	DatacenterID   int64
	WorkerID       int64
	WorkerIDBits   uint8
	SequenceBits   uint8
	DatacenterBits uint8

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Parts is a decoded id.
type Parts struct {
	Time         time.Time
	DatacenterID int64
	WorkerID     int64
	Sequence     int64
}

// Generator generates unique ids using the Snowflake layout.
type Generator struct {
	mu sync.Mutex

	epoch        int64
	datacenterID int64
	workerID     int64
	now          func() time.Time

	workerIDShift     uint8
	datacenterIDShift uint8
	timestampShift    uint8
	sequenceMask      int64
	workerIDMask      int64
	datacenterIDMask  int64

	sequence      int64
	lastTimestamp int64
}

var _ IDGenerator = (*Generator)(nil)

func NewGenerator(config Config) (*Generator, error) {
	if config.WorkerIDBits == 0 {
		config.WorkerIDBits = DefaultWorkerIDBits
	}
	if config.SequenceBits == 0 {
		config.SequenceBits = DefaultSequenceBits
	}
	if config.Epoch == 0 {
		config.Epoch = Epoch
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	if config.DatacenterBits+config.WorkerIDBits+config.SequenceBits > maxNodeBits {
		return nil, ErrInvalidBitAllocation
	}

	g := &Generator{
		epoch:             config.Epoch,
		datacenterID:      config.DatacenterID,
		workerID:          config.WorkerID,
		now:               config.Now,
		workerIDShift:     config.SequenceBits,
		datacenterIDShift: config.SequenceBits + config.WorkerIDBits,
		timestampShift:    config.SequenceBits + config.WorkerIDBits + config.DatacenterBits,
		sequenceMask:      -1 ^ (-1 << config.SequenceBits),
		workerIDMask:      -1 ^ (-1 << config.WorkerIDBits),
		datacenterIDMask:  -1 ^ (-1 << config.DatacenterBits),
		lastTimestamp:     -1,
	}

	if g.workerID < 0 || g.workerID > g.workerIDMask {
		return nil, ErrInvalidWorkerID
	}
	if config.DatacenterBits == 0 {
		g.datacenterID = 0
	} else if g.datacenterID < 0 || g.datacenterID > g.datacenterIDMask {
		return nil, ErrInvalidDatacenterID
	}

	return g, nil
}

// NextID returns the next id. Ids from one generator are strictly increasing.
func (g *Generator) NextID() (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := g.millis()
	if timestamp < g.lastTimestamp {
		return 0, ErrClockMovedBackwards
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & g.sequenceMask
		if g.sequence == 0 {
			timestamp = g.waitNextMillis(g.lastTimestamp)
		}
	} else {
		g.sequence = 0
	}
	g.lastTimestamp = timestamp

	id := ((timestamp - g.epoch) << g.timestampShift) |
		(g.datacenterID << g.datacenterIDShift) |
		(g.workerID << g.workerIDShift) |
		g.sequence
	return uint64(id), nil
}

func (g *Generator) millis() int64 {
	return g.now().UnixMilli()
}

func (g *Generator) waitNextMillis(last int64) int64 {
	timestamp := g.millis()
	for timestamp <= last {
		time.Sleep(100 * time.Microsecond)
		timestamp = g.millis()
	}
	return timestamp
}

// Parse extracts the components from an id made by this generator.
func (g *Generator) Parse(id uint64) Parts {
	v := int64(id)
	return Parts{
		Time:         time.UnixMilli((v >> g.timestampShift) + g.epoch).UTC(),
		DatacenterID: (v >> g.datacenterIDShift) & g.datacenterIDMask,
		WorkerID:     (v >> g.workerIDShift) & g.workerIDMask,
		Sequence:     v & g.sequenceMask,
	}
}

// CreatedAt returns the instant encoded in id.
func (g *Generator) CreatedAt(id uint64) time.Time {
	return g.Parse(id).Time
}
