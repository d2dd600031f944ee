// Package workload generates input batches for bulkhash benchmarks and
// tests: deterministic key batches with configurable distributions, a
// derived value batch, and a dropout transform for simulating lookup miss
// rates. The core containers never depend on this package.
package workload

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Distributions understood by Spec.
const (
	Sequential = "sequential"
	Uniform    = "uniform"
	Zipf       = "zipf"
)

// maxKey keeps generated keys clear of the default bulkhash sentinels at
// the top of the 32-bit key space.
const maxKey = ^uint32(0) - 8

// Spec describes a key batch. Zero values pick the documented defaults,
// so a Spec can be declared inline or loaded from YAML:
//
//	count: 1000000
//	distribution: zipf
//	key_range: 65536
//	zipf_s: 1.1
//	dropout: 0.2
//	seed: 42
type Spec struct {
	// Count is the batch size.
	Count int `yaml:"count"`
	// Distribution is one of sequential, uniform, zipf.
	// Empty means sequential.
	Distribution string `yaml:"distribution"`
	// KeyRange bounds generated keys to [1, KeyRange]. Zero means the
	// full usable key space.
	KeyRange uint32 `yaml:"key_range"`
	// ZipfS and ZipfV parameterize the zipf distribution
	// (s > 1, v >= 1; zero values become 1.1 and 1).
	ZipfS float64 `yaml:"zipf_s"`
	ZipfV float64 `yaml:"zipf_v"`
	// Dropout is the fraction of keys the Dropout transform removes.
	Dropout float64 `yaml:"dropout"`
	// Seed makes generation deterministic; batches with equal specs are
	// identical.
	Seed uint64 `yaml:"seed"`
}

// Load reads a YAML workload spec from path.
func Load(path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workload: read spec: %w", err)
	}
	var s Spec
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("workload: parse spec: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Spec) validate() error {
	switch s.Distribution {
	case "", Sequential, Uniform, Zipf:
	default:
		return fmt.Errorf("workload: unknown distribution %q", s.Distribution)
	}
	if s.Count < 0 {
		return fmt.Errorf("workload: negative count %d", s.Count)
	}
	if s.Dropout < 0 || s.Dropout > 1 {
		return fmt.Errorf("workload: dropout %v outside [0, 1]", s.Dropout)
	}
	if s.Distribution == Zipf && s.ZipfS != 0 && s.ZipfS <= 1 {
		return fmt.Errorf("workload: zipf_s %v must exceed 1", s.ZipfS)
	}
	if s.Distribution == Zipf && s.ZipfV != 0 && s.ZipfV < 1 {
		return fmt.Errorf("workload: zipf_v %v must be at least 1", s.ZipfV)
	}
	return nil
}

func (s *Spec) keyRange() uint32 {
	if s.KeyRange == 0 || s.KeyRange > maxKey {
		return maxKey
	}
	return s.KeyRange
}

// Keys generates the key batch described by the spec. Generated keys are
// in [1, KeyRange] and never collide with the default sentinels.
func (s *Spec) Keys() ([]uint32, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	keys := make([]uint32, s.Count)
	rng := rand.New(rand.NewSource(int64(s.Seed)))
	keyRange := s.keyRange()

	switch s.Distribution {
	case "", Sequential:
		for i := range keys {
			keys[i] = uint32(i)%keyRange + 1
		}
	case Uniform:
		for i := range keys {
			keys[i] = uint32(rng.Int63n(int64(keyRange))) + 1
		}
	case Zipf:
		zs, zv := s.ZipfS, s.ZipfV
		if zs == 0 {
			zs = 1.1
		}
		if zv == 0 {
			zv = 1
		}
		z := rand.NewZipf(rng, zs, zv, uint64(keyRange-1))
		for i := range keys {
			keys[i] = uint32(z.Uint64()) + 1
		}
	}
	return keys, nil
}

// Values derives a deterministic value batch for a key batch, one value
// per key, clear of the default empty-value sentinel.
func Values(keys []uint32) []uint32 {
	values := make([]uint32, len(keys))
	for i, k := range keys {
		v := k*2654435761 + 1
		if v > maxKey {
			v -= 16
		}
		values[i] = v
	}
	return values
}

// Dropout removes roughly fraction of the keys, deterministically for a
// given seed. Inserting the thinned batch and querying the full batch
// simulates the corresponding lookup miss rate.
func Dropout(keys []uint32, fraction float64, seed uint64) []uint32 {
	if fraction <= 0 {
		return append([]uint32(nil), keys...)
	}
	rng := rand.New(rand.NewSource(int64(seed)))
	kept := make([]uint32, 0, len(keys))
	for _, k := range keys {
		if rng.Float64() >= fraction {
			kept = append(kept, k)
		}
	}
	return kept
}
