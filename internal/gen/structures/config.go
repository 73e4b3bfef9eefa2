package structures

import "structureforge/internal/gen/zone"

// Densities configures expected structure counts. House, Tower and Ruins are
// instances per unit world area; Village and Bridge are per-chunk placement
// probabilities.
type Densities struct {
	House   float64
	Tower   float64
	Ruins   float64
	Village float64
	Bridge  float64
}

// Config is the full generation configuration, injected at construction so
// tests can override any part of it. Zero fields take the documented
// defaults.
type Config struct {
	// Seed salts every per-chunk stream. Two managers with equal seeds and
	// equal configuration generate identical worlds.
	Seed int64

	// ChunkSize is the world-unit side length of one streaming chunk.
	ChunkSize float64

	Densities   Densities
	Multipliers zone.Multipliers

	// Dark Sanctum landmark placement: only chunks with both coordinates
	// divisible by LandmarkInterval are candidates, chunks within
	// LandmarkOriginExclusion of the origin never are, and no two sanctums
	// may sit closer than MinLandmarkSeparation world units.
	LandmarkInterval        int
	LandmarkOriginExclusion int
	MinLandmarkSeparation   float64

	// Mountain group size range for mountain-zone chunks.
	MountainMin int
	MountainMax int
}

func (c *Config) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 100
	}
	if c.Densities == (Densities{}) {
		c.Densities = Densities{
			House:   0.0008,
			Tower:   0.0002,
			Ruins:   0.0003,
			Village: 0.05,
			Bridge:  0.03,
		}
	}
	if c.Multipliers == nil {
		c.Multipliers = zone.DefaultMultipliers()
	}
	if c.LandmarkInterval <= 0 {
		c.LandmarkInterval = 5
	}
	if c.LandmarkOriginExclusion <= 0 {
		c.LandmarkOriginExclusion = 1
	}
	if c.MinLandmarkSeparation <= 0 {
		c.MinLandmarkSeparation = 200
	}
	if c.MountainMin <= 0 {
		c.MountainMin = 2
	}
	if c.MountainMax < c.MountainMin {
		c.MountainMax = c.MountainMin + 3
	}
}
