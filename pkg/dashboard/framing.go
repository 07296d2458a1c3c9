package dashboard

import (
	"fmt"
	"math"

	"github.com/mouthwatch/platform/pkg/common/models"
)

const (
	framingLift     = 0.3
	framingDistance = 1.8
)

// Bounds is an axis-aligned box in the mesh's local space.
type Bounds struct {
	Min models.Vec3 `json:"min"`
	Max models.Vec3 `json:"max"`
}

func (b Bounds) Validate() error {
	for axis := 0; axis < 3; axis++ {
		lo, hi := b.Min[axis], b.Max[axis]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return invalid("bounds", fmt.Errorf("axis %d is not finite: %w", axis, ErrInvalidBounds))
		}
		if lo > hi {
			return invalid("bounds", fmt.Errorf("axis %d min %.4f exceeds max %.4f: %w", axis, lo, hi, ErrInvalidBounds))
		}
	}
	return nil
}

func (b Bounds) Center() models.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b Bounds) Size() models.Vec3 {
	return b.Max.Sub(b.Min)
}

type Framing struct {
	Eye          models.Vec3 `json:"eye"`
	Target       models.Vec3 `json:"target"`
	MaxDimension float64     `json:"maxDimension"`
}

// ComputeFraming places the eye above and in front of the box center,
// scaled by the box's largest extent, looking at the center.
func ComputeFraming(b Bounds) Framing {
	center := b.Center()
	size := b.Size()
	maxDim := math.Max(size[0], math.Max(size[1], size[2]))

	return Framing{
		Eye:          center.Add(models.Vec3{0, framingLift * maxDim, framingDistance * maxDim}),
		Target:       center,
		MaxDimension: maxDim,
	}
}

// FramingCycle allows one framing per (patient, mesh load) pair.
type FramingCycle struct {
	PatientID string   `json:"patientId"`
	MeshLoad  uint64   `json:"meshLoad"`
	Framed    bool     `json:"framed"`
	Last      *Framing `json:"last,omitempty"`
}

// Reset starts a new cycle for patientID. Same-patient resets are ignored.
func (c *FramingCycle) Reset(patientID string) {
	if c.PatientID == patientID {
		return
	}
	c.PatientID = patientID
	c.MeshLoad = 0
	c.Framed = false
	c.Last = nil
}

func (c *FramingCycle) Reload() {
	c.MeshLoad++
	c.Framed = false
	c.Last = nil
}

// Apply reports applied=false when this cycle was already framed.
func (c *FramingCycle) Apply(b Bounds) (Framing, bool, error) {
	if err := b.Validate(); err != nil {
		return Framing{}, false, err
	}
	if c.Framed {
		return *c.Last, false, nil
	}
	framing := ComputeFraming(b)
	c.Framed = true
	c.Last = &framing
	return framing, true, nil
}
