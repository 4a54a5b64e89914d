package ipc

import (
	"fmt"
	"math"

	"github.com/xoviat/kfgen/lib/geom"
	"github.com/xoviat/kfgen/lib/spec"
)

// ManufacturingTolerances carries the process tolerances that enter the
// IPC land-pattern formulas alongside the part tolerances.
type ManufacturingTolerances struct {
	// Fabrication (F) tolerance, default 0.1mm.
	Fab float64
	// Placement (P) tolerance, default 0.05mm.
	Placement float64
}

func DefaultTolerances() ManufacturingTolerances {
	return ManufacturingTolerances{Fab: 0.1, Placement: 0.05}
}

// Lands is the result of a land-pattern calculation for one axis:
//
//	Gmin - inside distance between the two land rows
//	Zmax - outside distance over both land rows
//	Xmax - land width
type Lands struct {
	Gmin float64
	Zmax float64
	Xmax float64
}

// GullWingArgs describes the lead geometry of a gull-wing style package
// along one axis.
type GullWingArgs struct {
	LeadWidth   spec.TolerancedSize
	LeadOutside spec.TolerancedSize
	// Exactly one of LeadInside or LeadLen must be set.
	LeadInside *spec.TolerancedSize
	LeadLen    *spec.TolerancedSize
	// HeelReduction shrinks the heel fillet, used to keep clear of an
	// exposed pad.
	HeelReduction float64
}

// GullWing computes lands for gull-wing leads per IPC-7351:
//
//	Zmax = Lmin + 2*Jtoe + sqrt(CL^2 + F^2 + P^2)
//	Gmin = Smax - 2*Jheel - sqrt(CS^2 + F^2 + P^2)
//	Xmax = Wmin + 2*Jside + sqrt(CW^2 + F^2 + P^2)
//
// When the datasheet lists the terminal length T instead of the inside
// distance S, S is derived as LeadOutside - 2*T with RMS-combined
// tolerances.
func GullWing(off Offsets, round Roundoff, tol ManufacturingTolerances, a GullWingArgs) (Lands, error) {
	var s spec.TolerancedSize
	switch {
	case a.LeadInside != nil:
		s = *a.LeadInside
	case a.LeadLen != nil:
		s = a.LeadOutside.Sub(a.LeadLen.MulScalar(2))
	default:
		return Lands{}, fmt.Errorf("either lead inside distance or lead length must be given")
	}
	return lands(off, round, tol, s, a.LeadOutside, a.LeadWidth, a.HeelReduction), nil
}

// BodyEdgeArgs describes no-lead terminals referenced to the body edge,
// optionally pulled back from it.
type BodyEdgeArgs struct {
	BodySize  spec.TolerancedSize
	LeadWidth spec.TolerancedSize
	// Outside-to-outside lead dimension. If unset it is derived from the
	// body size and the pull-back.
	LeadOutside *spec.TolerancedSize
	// PullBack is the terminal pull-back from the body edge (zero for
	// standard QFN/DFN).
	PullBack spec.TolerancedSize
	// One of LeadInside, LeadLen or BodyToInsideLeadEdge must be set.
	LeadInside           *spec.TolerancedSize
	LeadLen              *spec.TolerancedSize
	BodyToInsideLeadEdge *spec.TolerancedSize

	HeelReduction float64
}

// BodyEdge computes lands for terminals on (or pulled back from) the
// body edge, the no-lead package variant of the gull-wing formulas.
func BodyEdge(off Offsets, round Roundoff, tol ManufacturingTolerances, a BodyEdgeArgs) (Lands, error) {
	leadOutside := a.BodySize.Sub(a.PullBack.MulScalar(2))
	if a.LeadOutside != nil {
		leadOutside = *a.LeadOutside
	}

	var s spec.TolerancedSize
	switch {
	case a.LeadInside != nil:
		s = *a.LeadInside
	case a.LeadLen != nil:
		s = leadOutside.Sub(a.LeadLen.MulScalar(2))
	case a.BodyToInsideLeadEdge != nil:
		s = a.BodySize.Sub(a.BodyToInsideLeadEdge.MulScalar(2))
	default:
		return Lands{}, fmt.Errorf("either lead inside distance, lead to body edge or lead length must be given")
	}

	return lands(off, round, tol, s, leadOutside, a.LeadWidth, a.HeelReduction), nil
}

// PadCenterArgs describes terminals given by their center position and
// length, as some LGA datasheets dimension them.
type PadCenterArgs struct {
	CenterPosition spec.TolerancedSize
	LeadLength     spec.TolerancedSize
	LeadWidth      spec.TolerancedSize
}

// PadCenter computes lands from a terminal center position and length:
// S = 2*center - len, L = 2*center + len.
func PadCenter(off Offsets, round Roundoff, tol ManufacturingTolerances, a PadCenterArgs) Lands {
	s := a.CenterPosition.MulScalar(2).Sub(a.LeadLength)
	leadOutside := a.CenterPosition.MulScalar(2).Add(a.LeadLength)
	return lands(off, round, tol, s, leadOutside, a.LeadWidth, 0)
}

func lands(off Offsets, round Roundoff, tol ManufacturingTolerances,
	s, leadOutside, leadWidth spec.TolerancedSize, heelReduction float64) Lands {

	fp := tol.Fab*tol.Fab + tol.Placement*tol.Placement

	gmin := s.MaximumRMS - 2*off.Heel + 2*heelReduction - math.Sqrt(s.TolRMS*s.TolRMS+fp)
	zmax := leadOutside.MinimumRMS + 2*off.Toe + math.Sqrt(leadOutside.TolRMS*leadOutside.TolRMS+fp)
	xmax := leadWidth.MinimumRMS + 2*off.Side + math.Sqrt(leadWidth.TolRMS*leadWidth.TolRMS+fp)

	return Lands{
		Gmin: geom.RoundToGridNearest(gmin, round.Heel),
		Zmax: geom.RoundToGridNearest(zmax, round.Toe),
		Xmax: geom.RoundToGridNearest(xmax, round.Side),
	}
}

// ClampToExposedPad grows Gmin on each axis so the inner pad edges keep
// at least clearance to an exposed pad of the given size. It returns the
// adjusted lands and the heel reduction that was applied.
func ClampToExposedPad(landsX, landsY Lands, epX, epY, clearance float64) (Lands, Lands, float64) {
	heelReduction := 0.0

	if epX > 0 && landsX.Gmin-2*clearance < epX {
		r := (epX + 2*clearance - landsX.Gmin) / 2
		if r > heelReduction {
			heelReduction = r
		}
		landsX.Gmin = epX + 2*clearance
	}
	if epY > 0 && landsY.Gmin-2*clearance < epY {
		r := (epY + 2*clearance - landsY.Gmin) / 2
		if r > heelReduction {
			heelReduction = r
		}
		landsY.Gmin = epY + 2*clearance
	}

	return landsX, landsY, heelReduction
}
