package simhost

import (
	"hash/fnv"
	"math/rand"
)

// PartitionedRNG hands out an independent *rand.Rand per named subsystem,
// each seeded deterministically from a single run seed plus the
// subsystem's name, so that (for example) adding a workload generator
// call never perturbs the migration-latency jitter sequence. Grounded on
// the teacher's deterministic per-subsystem seeding convention.
type PartitionedRNG struct {
	runSeed int64
	subs    map[string]*rand.Rand
}

func NewPartitionedRNG(runSeed int64) *PartitionedRNG {
	return &PartitionedRNG{runSeed: runSeed, subs: make(map[string]*rand.Rand)}
}

// For returns the *rand.Rand for the named subsystem, creating it on
// first use.
func (p *PartitionedRNG) For(subsystem string) *rand.Rand {
	if r, ok := p.subs[subsystem]; ok {
		return r
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(subsystem))
	seed := p.runSeed ^ int64(h.Sum64())
	r := rand.New(rand.NewSource(seed))
	p.subs[subsystem] = r
	return r
}
