package filter

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/katosystems/kato-core/internal/config"
)

// bloomStage implements spec.md §4.7.4: every symbol in the STM's required
// set must pass the pattern's Bloom-filter membership test. The filter is
// built on demand from the pattern's token multiset, sized for
// bloom_false_positive_rate at the pattern's own cardinality, so a cheap
// reject never depends on a persisted index.
type bloomStage struct {
	cfg config.Resolved
}

func (bloomStage) Name() config.FilterStage { return config.FilterStageBloom }

func (s bloomStage) Run(ctx context.Context, tenantID string, input Input, candidates []Candidate) ([]Candidate, error) {
	if len(input.RequiredSet) == 0 {
		return candidates, nil
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		set := c.Pattern.TokenSet()
		bf := newBloomFilter(len(set), s.cfg.BloomFalsePositiveRate)
		for tok := range set {
			bf.add(tok)
		}

		hit := 0
		for tok := range input.RequiredSet {
			if bf.test(tok) {
				hit++
			}
		}
		if hit != len(input.RequiredSet) {
			continue
		}
		c.Score = float64(hit) / float64(len(input.RequiredSet))
		out = append(out, c)
	}
	return out, nil
}

// bloomFilter is a minimal Bloom filter over string tokens, backed by
// bits-and-blooms/bitset and a pair of independent FNV hashes combined via
// double hashing (Kirsch-Mitzenmacher) to derive k index functions.
type bloomFilter struct {
	bits *bitset.BitSet
	m    uint
	k    uint
}

func newBloomFilter(n int, falsePositiveRate float64) *bloomFilter {
	if n < 1 {
		n = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}
	m := optimalM(n, falsePositiveRate)
	k := optimalK(n, m)
	return &bloomFilter{bits: bitset.New(m), m: m, k: k}
}

func optimalM(n int, p float64) uint {
	m := math.Ceil(-1 * float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	if m < 1 {
		m = 1
	}
	return uint(m)
}

func optimalK(n int, m uint) uint {
	k := math.Round(float64(m) / float64(n) * math.Ln2)
	if k < 1 {
		k = 1
	}
	return uint(k)
}

func (bf *bloomFilter) indices(token string) (uint, uint) {
	h1 := fnv.New64a()
	h1.Write([]byte(token))
	a := h1.Sum64()

	h2 := fnv.New32a()
	h2.Write([]byte(token))
	b := uint64(h2.Sum32())
	if b == 0 {
		b = 1
	}
	return uint(a), uint(b)
}

func (bf *bloomFilter) add(token string) {
	a, b := bf.indices(token)
	for i := uint(0); i < bf.k; i++ {
		bf.bits.Set((a + i*b) % bf.m)
	}
}

func (bf *bloomFilter) test(token string) bool {
	a, b := bf.indices(token)
	for i := uint(0); i < bf.k; i++ {
		if !bf.bits.Test((a + i*b) % bf.m) {
			return false
		}
	}
	return true
}
