// Facility recipes and per-instance runtime state.
package economy

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// staffingAlpha shapes diminishing returns below full staffing.
const staffingAlpha = 0.7

// FacilityDef is an immutable facility type: a single-input recipe plus
// labor and placement constraints.
type FacilityDef struct {
	Name string `yaml:"name"`

	InputGood    Good    `yaml:"-"`
	InputAmount  float64 `yaml:"inputAmount"` // input goods consumed per output unit
	OutputGood   Good    `yaml:"-"`
	OutputAmount float64 `yaml:"outputAmount"` // output goods per throughput unit

	LaborPerUnit             float64 `yaml:"laborPerUnit"` // worker-days per throughput unit
	PlacementMinProductivity float64 `yaml:"placementMinProductivity"`
	MaxLaborFraction         float64 `yaml:"maxLaborFraction"` // cap vs. county population
	BaselineOutput           float64 `yaml:"baselineOutput"`   // throughput units per day at full staffing
}

// LaborRequired returns the workers needed for full staffing.
func (d *FacilityDef) LaborRequired() float64 {
	return d.BaselineOutput * d.LaborPerUnit
}

// Facility is one placed production unit. Created at placement, destroyed on
// removal; buffers are local stockpiles between the county stock and the recipe.
type Facility struct {
	ID       int `json:"id"`
	TypeID   int `json:"typeId"` // index into State.Defs
	Cell     int `json:"cell"`
	CountyID int `json:"countyId"`

	AssignedWorkers float64 `json:"assignedWorkers"`
	InputBuffer     float64 `json:"inputBuffer"`
	OutputBuffer    float64 `json:"outputBuffer"`
	IsActive        bool    `json:"isActive"`
}

// Efficiency returns labor efficiency for w assigned workers against required
// labor L: 1 at or above full staffing, 0 with no workers, r^0.7 below full
// staffing. L <= 0 counts as fully efficient.
func Efficiency(workers, laborRequired float64) float64 {
	if laborRequired <= 0 {
		return 1
	}
	if workers <= 0 {
		return 0
	}
	r := workers / laborRequired
	if r >= 1 {
		return 1
	}
	return math.Pow(r, staffingAlpha)
}

// Step runs one day of throughput: consumes inputs from InputBuffer and
// deposits outputs into OutputBuffer, clamped by available input stock.
// Returns the throughput units realized.
func (f *Facility) Step(def *FacilityDef) float64 {
	if !f.IsActive {
		return 0
	}
	units := def.BaselineOutput * Efficiency(f.AssignedWorkers, def.LaborRequired())
	if def.InputAmount > 0 {
		maxByInput := f.InputBuffer / def.InputAmount
		if units > maxByInput {
			units = maxByInput
		}
	}
	if units <= 0 {
		return 0
	}
	f.InputBuffer -= def.InputAmount * units
	if f.InputBuffer < 0 {
		f.InputBuffer = 0
	}
	f.OutputBuffer += def.OutputAmount * units
	return units
}

type facilityDefFile struct {
	Name                     string  `yaml:"name"`
	InputGood                string  `yaml:"inputGood"`
	InputAmount              float64 `yaml:"inputAmount"`
	OutputGood               string  `yaml:"outputGood"`
	OutputAmount             float64 `yaml:"outputAmount"`
	LaborPerUnit             float64 `yaml:"laborPerUnit"`
	PlacementMinProductivity float64 `yaml:"placementMinProductivity"`
	MaxLaborFraction         float64 `yaml:"maxLaborFraction"`
	BaselineOutput           float64 `yaml:"baselineOutput"`
}

type facilitiesFile struct {
	Facilities []facilityDefFile `yaml:"facilities"`
}

// LoadFacilityDefs reads and validates the facility catalog against the goods
// catalog. A recipe referencing an undefined good is fatal.
func LoadFacilityDefs(path string, cat *Catalog) ([]FacilityDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facility defs: %w", err)
	}
	var file facilitiesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("facility defs: %w", err)
	}

	defs := make([]FacilityDef, 0, len(file.Facilities))
	seen := make(map[string]bool, len(file.Facilities))
	for _, fd := range file.Facilities {
		if seen[fd.Name] {
			return nil, fmt.Errorf("facility defs: duplicate facility %q", fd.Name)
		}
		seen[fd.Name] = true
		in, ok := cat.GoodByName(fd.InputGood)
		if !ok {
			return nil, fmt.Errorf("facility defs: %q input references undefined good %q", fd.Name, fd.InputGood)
		}
		out, ok := cat.GoodByName(fd.OutputGood)
		if !ok {
			return nil, fmt.Errorf("facility defs: %q output references undefined good %q", fd.Name, fd.OutputGood)
		}
		if fd.InputAmount < 0 || fd.OutputAmount <= 0 {
			return nil, fmt.Errorf("facility defs: %q has invalid recipe amounts", fd.Name)
		}
		if fd.BaselineOutput <= 0 || fd.LaborPerUnit < 0 {
			return nil, fmt.Errorf("facility defs: %q has invalid labor parameters", fd.Name)
		}
		if fd.MaxLaborFraction <= 0 || fd.MaxLaborFraction > 1 {
			return nil, fmt.Errorf("facility defs: %q maxLaborFraction out of (0,1]", fd.Name)
		}
		defs = append(defs, FacilityDef{
			Name:                     fd.Name,
			InputGood:                in,
			InputAmount:              fd.InputAmount,
			OutputGood:               out,
			OutputAmount:             fd.OutputAmount,
			LaborPerUnit:             fd.LaborPerUnit,
			PlacementMinProductivity: fd.PlacementMinProductivity,
			MaxLaborFraction:         fd.MaxLaborFraction,
			BaselineOutput:           fd.BaselineOutput,
		})
	}
	return defs, nil
}
