// Facility throughput — staffing, input draw, and recipe execution.
package engine

import (
	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// FacilitySystem assigns workers from each county's labor pool, feeds input
// buffers from county stock, and runs one day of recipe throughput. Output
// accumulates in the facility's OutputBuffer; the trade pipeline consigns it
// and flushes the remainder back to the host county.
type FacilitySystem struct{}

func (FacilitySystem) Name() string  { return "facilities" }
func (FacilitySystem) Interval() int { return 1 }

func (FacilitySystem) Initialize(st *economy.State, m *world.MapData) {}

func (FacilitySystem) Tick(st *economy.State, m *world.MapData) {
	laborUsed := make([]float64, len(st.Counties))
	for i := range st.Counties {
		st.Counties[i].FacilityWorkers = 0
	}

	// Quota'd facilities staff first: the realm's trade pipeline marked their
	// output goods as production targets.
	for pass := 0; pass < 2; pass++ {
		for i := range st.Facilities {
			f := &st.Facilities[i]
			if !f.IsActive {
				f.AssignedWorkers = 0
				continue
			}
			def := &st.Defs[f.TypeID]
			county := &st.Counties[f.CountyID]
			hasQuota := county.FacilityQuota[def.OutputGood] > 0
			if (pass == 0) != hasQuota {
				continue
			}

			pool := st.Params.LaborPoolFraction*county.Population - laborUsed[f.CountyID]
			w := def.LaborRequired()
			if cap := def.MaxLaborFraction * county.Population; w > cap {
				w = cap
			}
			if w > pool {
				w = pool
			}
			if w < 0 {
				w = 0
			}
			f.AssignedWorkers = w
			laborUsed[f.CountyID] += w
			county.FacilityWorkers += w

			// Refill the input buffer up to one full-staffing day of inputs.
			want := def.InputAmount*def.BaselineOutput - f.InputBuffer
			if want > 0 {
				drawn := want
				if drawn > county.Stock[def.InputGood] {
					drawn = county.Stock[def.InputGood]
				}
				county.Stock[def.InputGood] -= drawn
				county.Consumption[def.InputGood] += drawn
				f.InputBuffer += drawn
			}

			units := f.Step(def)
			county.Production[def.OutputGood] += def.OutputAmount * units
		}
	}
}
