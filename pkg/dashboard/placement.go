package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mouthwatch/platform/pkg/common/models"
)

type IDGenerator func() string

// Resolver turns a surface pick plus operator text into an Annotation.
// It never touches patient state.
type Resolver struct {
	newID IDGenerator
	now   func() time.Time
}

func NewResolver(newID IDGenerator) *Resolver {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Resolver{newID: newID, now: time.Now}
}

// Resolve returns ErrPlacementCancelled when label is blank after trimming.
func (r *Resolver) Resolve(point models.Vec3, severity models.Severity, label, note string) (models.Annotation, error) {
	if !severity.Valid() {
		return models.Annotation{}, invalid("severity", fmt.Errorf("%q: %w", severity, ErrInvalidSeverity))
	}
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return models.Annotation{}, ErrPlacementCancelled
	}
	return models.Annotation{
		ID:       r.newID(),
		Position: point,
		Severity: severity,
		Label:    trimmed,
		Note:     note,
	}, nil
}

// Pick is one pick-to-confirm sequence. The severity is captured when the
// operator clicks, not when the label arrives.
type Pick struct {
	ID        string          `json:"id"`
	PatientID string          `json:"patientId"`
	Point     models.Vec3     `json:"point"`
	Severity  models.Severity `json:"severity"`
	PickedAt  time.Time       `json:"pickedAt"`

	resolver *Resolver
}

func (r *Resolver) Pick(patientID string, point models.Vec3, severity models.Severity) (Pick, error) {
	if !severity.Valid() {
		return Pick{}, invalid("severity", fmt.Errorf("%q: %w", severity, ErrInvalidSeverity))
	}
	return Pick{
		ID:        r.newID(),
		PatientID: patientID,
		Point:     point,
		Severity:  severity,
		PickedAt:  r.now(),
		resolver:  r,
	}, nil
}

func (p Pick) Confirm(label, note string) (models.Annotation, error) {
	resolver := p.resolver
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return resolver.Resolve(p.Point, p.Severity, label, note)
}
