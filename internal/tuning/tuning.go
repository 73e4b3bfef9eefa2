// Package tuning loads the generation tuning file. Values map onto
// structures.Config; missing values fall back to the generation defaults.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"structureforge/internal/gen/structures"
	"structureforge/internal/gen/zone"
)

type Tuning struct {
	ChunkSize float64 `yaml:"chunk_size"`

	Densities struct {
		House   float64 `yaml:"house"`
		Tower   float64 `yaml:"tower"`
		Ruins   float64 `yaml:"ruins"`
		Village float64 `yaml:"village"`
		Bridge  float64 `yaml:"bridge"`
	} `yaml:"densities"`

	ZoneMultipliers map[string]float64 `yaml:"zone_multipliers"`

	Landmark struct {
		Interval        int     `yaml:"interval"`
		OriginExclusion int     `yaml:"origin_exclusion"`
		MinSeparation   float64 `yaml:"min_separation"`
	} `yaml:"landmark"`

	Mountains struct {
		Min int `yaml:"min"`
		Max int `yaml:"max"`
	} `yaml:"mountains"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Defaults returns an empty tuning; Config mapping fills in the generation
// defaults for every zero field.
func Defaults() Tuning {
	return Tuning{}
}

// Config maps tuning onto the injected generation config.
func (t Tuning) Config(seed int64) structures.Config {
	cfg := structures.Config{
		Seed:      seed,
		ChunkSize: t.ChunkSize,
		Densities: structures.Densities{
			House:   t.Densities.House,
			Tower:   t.Densities.Tower,
			Ruins:   t.Densities.Ruins,
			Village: t.Densities.Village,
			Bridge:  t.Densities.Bridge,
		},
		LandmarkInterval:        t.Landmark.Interval,
		LandmarkOriginExclusion: t.Landmark.OriginExclusion,
		MinLandmarkSeparation:   t.Landmark.MinSeparation,
		MountainMin:             t.Mountains.Min,
		MountainMax:             t.Mountains.Max,
	}
	if len(t.ZoneMultipliers) > 0 {
		m := zone.Multipliers{}
		for k, v := range t.ZoneMultipliers {
			m[zone.Name(k)] = v
		}
		cfg.Multipliers = m
	}
	return cfg
}
