package anchorage

import (
	"encoding/json"
	"os"
	"time"
)

// Config collects the tunable thresholds spec.md §6 lists as CLI
// `--config` JSON keys. Zero-value fields are filled in by
// LoadConfig/DefaultConfig with the "typical" values spec.md calls out
// inline, matching the teacher's habit (see decode/params.go) of shipping
// sane defaults rather than requiring every key on every invocation.
type Config struct {
	MinRequiredPositions             int     `json:"min_required_positions"`
	StationaryPeriodMinDurationHours float64 `json:"stationary_period_min_duration_hours"`
	StationaryPeriodMaxDistanceKm    float64 `json:"stationary_period_max_distance_km"`
	MinUniqueVesselsForAnchorage     int     `json:"min_unique_vessels_for_anchorage"`
	AnchorageEntryDistanceKm         float64 `json:"anchorage_entry_distance_km"`
	AnchorageExitDistanceKm          float64 `json:"anchorage_exit_distance_km"`
	StoppedBeginSpeedKnots           float64 `json:"stopped_begin_speed_knots"`
	StoppedEndSpeedKnots             float64 `json:"stopped_end_speed_knots"`
	MinimumPortGapDurationMinutes    float64 `json:"minimum_port_gap_duration_minutes"`
	BlacklistedVesselIDs             []int64 `json:"blacklisted_vessel_ids"`
	TopDestinationsCount             int     `json:"top_destinations_count"`
	ThinningIntervalMinutes          float64 `json:"thinning_interval_minutes"`
	WarmupPaddingHours               float64 `json:"warmup_padding_hours"`
}

// DefaultConfig returns the "typical" values spec.md §4 calls out inline.
func DefaultConfig() Config {
	return Config{
		MinRequiredPositions:             200,
		StationaryPeriodMinDurationHours: 12,
		StationaryPeriodMaxDistanceKm:    0.5,
		MinUniqueVesselsForAnchorage:     20,
		AnchorageEntryDistanceKm:         3.0,
		AnchorageExitDistanceKm:          4.0,
		StoppedBeginSpeedKnots:           0.2,
		StoppedEndSpeedKnots:             0.5,
		MinimumPortGapDurationMinutes:    360,
		BlacklistedVesselIDs:             nil,
		TopDestinationsCount:             10,
		ThinningIntervalMinutes:          5,
		WarmupPaddingHours:               24,
	}
}

// LoadConfig reads a JSON config file, overlaying its keys on top of
// DefaultConfig so a partial config (as spec.md's example implies) is
// valid input.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Blacklist turns the config's vessel id list into a lookup set.
func (c Config) Blacklist() map[int64]struct{} {
	set := make(map[int64]struct{}, len(c.BlacklistedVesselIDs))
	for _, id := range c.BlacklistedVesselIDs {
		set[id] = struct{}{}
	}
	return set
}

func (c Config) StationaryPeriodMinDuration() time.Duration {
	return time.Duration(c.StationaryPeriodMinDurationHours * float64(time.Hour))
}

func (c Config) MinimumPortGapDuration() time.Duration {
	return time.Duration(c.MinimumPortGapDurationMinutes * float64(time.Minute))
}

func (c Config) ThinningInterval() time.Duration {
	return time.Duration(c.ThinningIntervalMinutes * float64(time.Minute))
}

func (c Config) WarmupPadding() time.Duration {
	return time.Duration(c.WarmupPaddingHours * float64(time.Hour))
}
