// Package snapshot defines the static reference data injected into every
// advisory prompt: the farmer profile and current market, weather, pest and
// scheme information.
package snapshot

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FarmerProfile describes the farmer the session is advising.
type FarmerProfile struct {
	Name           string            `json:"name" yaml:"name"`
	Location       string            `json:"location" yaml:"location"`
	FarmSize       string            `json:"farm_size" yaml:"farm_size"`
	Crops          []string          `json:"crops" yaml:"crops"`
	SoilType       string            `json:"soil_type" yaml:"soil_type"`
	Irrigation     string            `json:"irrigation" yaml:"irrigation"`
	Language       string            `json:"language" yaml:"language"`
	LastYield      map[string]string `json:"last_yield" yaml:"last_yield"`
	UpcomingSeason string            `json:"upcoming_season,omitempty" yaml:"upcoming_season"`
}

// CropMarket is the current market state for one crop.
type CropMarket struct {
	Price  string `json:"price" yaml:"price"`
	Demand string `json:"demand" yaml:"demand"`
	Trend  string `json:"trend" yaml:"trend"`
}

// Weather is the current local weather and its advisory.
type Weather struct {
	Current  string `json:"current" yaml:"current"`
	Forecast string `json:"forecast" yaml:"forecast"`
	Advisory string `json:"advisory" yaml:"advisory"`
}

// Scheme is a government programme the farmer may apply for.
type Scheme struct {
	Name        string `json:"name" yaml:"name"`
	Benefit     string `json:"benefit" yaml:"benefit"`
	Eligibility string `json:"eligibility" yaml:"eligibility"`
}

// Snapshot bundles all reference data. It is treated as read-only once
// handed to the pipeline.
type Snapshot struct {
	Profile    FarmerProfile         `json:"profile" yaml:"profile"`
	Market     map[string]CropMarket `json:"market" yaml:"market"`
	Weather    Weather               `json:"weather" yaml:"weather"`
	PestAlerts map[string]string     `json:"pest_alerts" yaml:"pest_alerts"`
	Schemes    []Scheme              `json:"schemes" yaml:"schemes"`
}

// Source supplies the snapshot for a turn. A live data feed can replace the
// static implementation without touching callers.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Static always returns the same snapshot.
type Static struct {
	snap Snapshot
}

// NewStatic wraps snap as a Source.
func NewStatic(snap Snapshot) *Static {
	return &Static{snap: snap}
}

// Snapshot returns the wrapped snapshot.
func (s *Static) Snapshot(context.Context) (Snapshot, error) {
	return s.snap, nil
}

// LoadFile reads a snapshot from a YAML file. Sections missing from the file
// keep the values from Default.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	snap := Default()
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return snap, nil
}

// Default is the built-in sample dataset for a Kurnool paddy/cotton farm.
func Default() Snapshot {
	return Snapshot{
		Profile: FarmerProfile{
			Name:       "Ramesh Kumar",
			Location:   "Kurnool, Andhra Pradesh",
			FarmSize:   "5 acres",
			Crops:      []string{"Rice", "Cotton", "Groundnut"},
			SoilType:   "Red soil",
			Irrigation: "Bore well + Canal",
			Language:   "Telugu",
			LastYield: map[string]string{
				"rice":   "4.2 tons/acre",
				"cotton": "12 quintals/acre",
			},
			UpcomingSeason: "Kharif 2024",
		},
		Market: map[string]CropMarket{
			"rice":      {Price: "₹2,100/quintal", Demand: "High", Trend: "Rising"},
			"cotton":    {Price: "₹5,800/quintal", Demand: "Moderate", Trend: "Stable"},
			"groundnut": {Price: "₹5,200/quintal", Demand: "High", Trend: "Rising"},
		},
		Weather: Weather{
			Current:  "Partly cloudy, 28°C",
			Forecast: "Rain expected in 3-4 days, 15mm precipitation",
			Advisory: "Good time for land preparation",
		},
		PestAlerts: map[string]string{
			"rice":   "Brown Plant Hopper outbreak reported in nearby districts",
			"cotton": "Bollworm activity moderate, monitor closely",
		},
		Schemes: []Scheme{
			{Name: "PM-KISAN", Benefit: "₹6,000/year direct cash transfer", Eligibility: "Small and marginal farmers"},
			{Name: "Crop Insurance", Benefit: "Premium subsidy up to 50%", Eligibility: "All farmers with valid land records"},
		},
	}
}
