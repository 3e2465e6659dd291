package gnss

import (
	"math"

	"github.com/samber/lo"
)

// SolverConfig gates one Solve call's accuracy and outlier-rejection
// policy, dop/error-limit knobs.
type SolverConfig struct {
	MaxDOP        float64
	MaxResidual   float64 // meters
	MaxIterations int
}

// DefaultSolverConfig mirrors the NAV_bancroft loop
// defaults: a GDOP ceiling of 10 and a 2km residual ceiling before a
// satellite is considered an outlier worth excluding.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{MaxDOP: 10, MaxResidual: 2000, MaxIterations: 10}
}

// Fix is one resolved GNSS position/velocity/time solution.
type Fix struct {
	Pos        ECEF
	Vel        ECEF
	ClockBias  float64
	ClockDrift float64
	DOP        DOP
	NumSats    int
	Excluded   []int // PRNs dropped as outliers during the solve
}

// Solve runs a bancroft-seed, Gauss-Newton-refine, DOP-and-residual-gated
// satellite exclusion pipeline:
//  1. Bancroft closed-form seed from the current satellite set.
//  2. Iterate LinearizePosition to convergence.
//  3. Compute DOP and the worst per-satellite residual; if either
//     exceeds cfg's limits, drop the satellite with the worst residual
//     and retry from step 1 with the reduced set (greedy worst-first
//     removal, since the costliest outlier dominates both DOP and
//     residual in practice).
//  4. Once gated, refine velocity with one LinearizeVelocity step.
func Solve(sats []Sat, cfg SolverConfig) (Fix, bool) {
	active := append([]Sat(nil), sats...)
	var excluded []int

	for {
		if len(active) < 4 {
			return Fix{}, false
		}

		pos, clockBias, ok := Bancroft(active)
		if !ok {
			return Fix{}, false
		}

		dt := clockBias
		for i := 0; i < cfg.MaxIterations; i++ {
			dPos, dClock, ok := LinearizePosition(active, pos, dt)
			if !ok {
				return Fix{}, false
			}
			pos.X += dPos.X
			pos.Y += dPos.Y
			pos.Z += dPos.Z
			dt += dClock
			if dist(dPos.X, dPos.Y, dPos.Z, 0, 0, 0) < 0.01 {
				break
			}
		}

		dop, dopOK := CalcDOP(active, pos)
		worstResidual, worstIdx := worstResidual(active, pos, dt)

		if dopOK && dop.GDOP <= cfg.MaxDOP && worstResidual <= cfg.MaxResidual {
			vel, clockDrift, velOK := LinearizeVelocity(active, pos, ECEF{}, 0)
			if !velOK {
				vel = ECEF{}
			}
			return Fix{
				Pos:        pos,
				Vel:        vel,
				ClockBias:  dt,
				ClockDrift: clockDrift,
				DOP:        dop,
				NumSats:    len(active),
				Excluded:   excluded,
			}, true
		}

		if len(active) <= 4 {
			return Fix{}, false
		}

		drop := active[worstIdx]
		excluded = append(excluded, drop.PRN)
		active = lo.Filter(active, func(s Sat, _ int) bool { return s.PRN != drop.PRN })
	}
}

// worstResidual returns the largest |geometric range - (pseudorange +
// clock correction + clock bias)| mismatch across sats, and the index
// of the satellite producing it.
func worstResidual(sats []Sat, pos ECEF, dt float64) (worst float64, idx int) {
	for i, s := range sats {
		r := dist(pos.X, pos.Y, pos.Z, s.X, s.Y, s.Z)
		resid := math.Abs(r - dt - (s.Pseudorange + s.ClockCorr))
		if resid > worst {
			worst = resid
			idx = i
		}
	}
	return worst, idx
}
