package dashboard

import (
	"context"
	"errors"

	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/common/models"
	"github.com/mouthwatch/platform/pkg/observability/metrics"
)

const eventSource = "dashboard-service"

// Publisher forwards committed changes downstream. kafka.Producer satisfies it.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	store     Store
	resolver  *Resolver
	picks     *PickRegistry
	publisher Publisher
}

// NewService accepts a nil publisher; events are then dropped.
func NewService(store Store, resolver *Resolver, picks *PickRegistry, publisher Publisher) *Service {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	if picks == nil {
		picks = NewPickRegistry(0)
	}
	return &Service{store: store, resolver: resolver, picks: picks, publisher: publisher}
}

func (s *Service) Store() Store { return s.store }

func (s *Service) SelectPatient(ctx context.Context, patientID string) (Session, error) {
	if err := s.store.SelectPatient(patientID); err != nil {
		return Session{}, err
	}
	logger.WithPatient(patientID).Debug("patient selected")
	return s.store.Session(), nil
}

// PlaceAnnotation is the one-step flow: the tool severity is read now,
// at pick time, unless the caller names one.
func (s *Service) PlaceAnnotation(ctx context.Context, patientID string, point models.Vec3, severity models.Severity, label, note string) (models.Annotation, error) {
	if severity == "" {
		severity = s.store.Session().ToolSeverity
	}
	if _, err := s.store.Patient(patientID); err != nil {
		return models.Annotation{}, err
	}
	annotation, err := s.resolver.Resolve(point, severity, label, note)
	if err != nil {
		if errors.Is(err, ErrPlacementCancelled) {
			metrics.PlacementsCancelled.Inc()
		}
		return models.Annotation{}, err
	}
	return annotation, s.commit(ctx, patientID, annotation)
}

// BeginPick binds a surface pick to the active patient and current tool severity.
func (s *Service) BeginPick(ctx context.Context, point models.Vec3) (Pick, error) {
	session := s.store.Session()
	pick, err := s.resolver.Pick(session.ActivePatientID, point, session.ToolSeverity)
	if err != nil {
		return Pick{}, err
	}
	s.picks.Open(pick)
	return pick, nil
}

func (s *Service) ConfirmPick(ctx context.Context, pickID, label, note string) (models.Annotation, error) {
	pick, err := s.picks.Take(pickID)
	if err != nil {
		return models.Annotation{}, err
	}
	annotation, err := pick.Confirm(label, note)
	if err != nil {
		if errors.Is(err, ErrPlacementCancelled) {
			metrics.PlacementsCancelled.Inc()
		}
		return models.Annotation{}, err
	}
	return annotation, s.commit(ctx, pick.PatientID, annotation)
}

func (s *Service) CancelPick(ctx context.Context, pickID string) error {
	if err := s.picks.Cancel(pickID); err != nil {
		return err
	}
	metrics.PlacementsCancelled.Inc()
	return nil
}

func (s *Service) SweepPicks() int {
	return s.picks.Sweep()
}

func (s *Service) SaveClinicalNotes(ctx context.Context, patientID, text string) error {
	if err := s.store.SaveClinicalNotes(patientID, text); err != nil {
		return err
	}
	metrics.NotesSaved.Inc()
	s.publish(ctx, models.EventNotesSaved, map[string]interface{}{
		"patient_id": patientID,
		"notes":      text,
	})
	return nil
}

func (s *Service) RecordScan(ctx context.Context, patientID string, scan models.Scan) error {
	if err := s.store.RecordScan(patientID, scan); err != nil {
		return err
	}
	s.publish(ctx, models.EventScanRecorded, map[string]interface{}{
		"patient_id": patientID,
		"scan_id":    scan.ID,
		"risk_level": string(scan.RiskLevel),
		"score":      scan.Score,
	})
	return nil
}

func (s *Service) FrameMesh(ctx context.Context, bounds Bounds) (Framing, bool, error) {
	framing, applied, err := s.store.FrameMesh(bounds)
	if err != nil {
		return Framing{}, false, err
	}
	if applied {
		metrics.FramingsApplied.Inc()
	}
	return framing, applied, nil
}

func (s *Service) commit(ctx context.Context, patientID string, annotation models.Annotation) error {
	if err := s.store.AddAnnotation(patientID, annotation); err != nil {
		return err
	}
	metrics.AnnotationsAdded.WithLabelValues(string(annotation.Severity)).Inc()
	s.publish(ctx, models.EventAnnotationAdded, map[string]interface{}{
		"patient_id":    patientID,
		"annotation_id": annotation.ID,
		"severity":      string(annotation.Severity),
		"label":         annotation.Label,
		"note":          annotation.Note,
		"position":      annotation.Position[:],
	})
	return nil
}

// publish never fails the caller: in-memory state is already committed.
func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, eventType, eventSource, data); err != nil {
		metrics.EventsPublishFailed.WithLabelValues(eventType).Inc()
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish dashboard event")
	}
}
