package snowflake

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_IDsStrictlyIncrease(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IDs generated in sequence are unique and increasing", prop.ForAll(
		func(count int) bool {
			g, err := NewGenerator(Config{DatacenterID: 1, WorkerID: 1})
			if err != nil {
				return false
			}

			var last uint64
			for i := range count {
				id, err := g.NextID()
				if err != nil {
					return false
				}
				if i > 0 && id <= last {
					return false
				}
				last = id
			}
			return true
		},
		gen.IntRange(100, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_DistinctWorkersNeverCollide(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IDs from generators with different worker IDs are unique", prop.ForAll(
		func(workerID1, workerID2 int64, count int) bool {
			if workerID1 == workerID2 {
				return true
			}
			gen1, err := NewGenerator(Config{WorkerID: workerID1})
			if err != nil {
				return false
			}
			gen2, err := NewGenerator(Config{WorkerID: workerID2})
			if err != nil {
				return false
			}

			ids := make(map[uint64]struct{}, count*2)
			for range count {
				for _, g := range []*Generator{gen1, gen2} {
					id, err := g.NextID()
					if err != nil {
						return false
					}
					if _, dup := ids[id]; dup {
						return false
					}
					ids[id] = struct{}{}
				}
			}
			return len(ids) == count*2
		},
		gen.Int64Range(0, 1023),
		gen.Int64Range(0, 1023),
		gen.IntRange(50, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ParseRecoversNodeBits(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("parsing an ID returns the configured node values", prop.ForAll(
		func(workerIDBits, sequenceBits, datacenterBits uint8) bool {
			if workerIDBits+sequenceBits+datacenterBits > maxNodeBits {
				return true
			}
			maxWorkerID := int64(1<<workerIDBits) - 1
			maxDatacenterID := int64(1<<datacenterBits) - 1

			g, err := NewGenerator(Config{
				DatacenterID:   maxDatacenterID,
				WorkerID:       maxWorkerID,
				WorkerIDBits:   workerIDBits,
				SequenceBits:   sequenceBits,
				DatacenterBits: datacenterBits,
			})
			if err != nil {
				return false
			}

			maxSequence := int64(1<<sequenceBits) - 1
			for range 10 {
				id, err := g.NextID()
				if err != nil {
					return false
				}
				parts := g.Parse(id)
				if parts.WorkerID != maxWorkerID || parts.DatacenterID != maxDatacenterID {
					return false
				}
				if parts.Sequence < 0 || parts.Sequence > maxSequence {
					return false
				}
			}
			return true
		},
		gen.UInt8Range(1, 15),
		gen.UInt8Range(1, 15),
		gen.UInt8Range(0, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
