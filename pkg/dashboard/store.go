package dashboard

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mouthwatch/platform/pkg/common/models"
)

type View string

const (
	ViewModel    View = "model"
	ViewCalendar View = "calendar"
)

func (v View) Valid() bool {
	return v == ViewModel || v == ViewCalendar
}

// Session is the operator-facing state around the selected patient.
type Session struct {
	ActivePatientID string          `json:"activePatientId"`
	NotesDraft      string          `json:"notesDraft"`
	View            View            `json:"view"`
	ToolSeverity    models.Severity `json:"toolSeverity"`
	Framing         FramingCycle    `json:"framing"`
}

// Store owns the roster and the active session. Exactly one patient is
// active at any time.
type Store interface {
	Patients() []models.Patient
	Patient(id string) (models.Patient, error)
	Session() Session
	ActivePatient() models.Patient

	SelectPatient(id string) error
	AddAnnotation(patientID string, annotation models.Annotation) error
	SaveClinicalNotes(patientID, text string) error

	UpdateDraft(text string)
	SetView(view View) error
	SetToolSeverity(severity models.Severity) error
	RecordScan(patientID string, scan models.Scan) error
	Markers(patientID string) ([]models.Marker, error)

	FrameMesh(bounds Bounds) (Framing, bool, error)
	ReloadMesh()
}

var _ Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	patients map[string]*models.Patient
	session  Session
}

// NewMemoryStore seeds from roster (read once) and selects the first patient.
func NewMemoryStore(roster []models.Patient) (*MemoryStore, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	s := &MemoryStore{
		order:    make([]string, 0, len(roster)),
		patients: make(map[string]*models.Patient, len(roster)),
	}
	for _, p := range roster {
		if strings.TrimSpace(p.ID) == "" {
			return nil, invalid("id", fmt.Errorf("roster entry %q has no id", p.Name))
		}
		if _, exists := s.patients[p.ID]; exists {
			return nil, fmt.Errorf("%s: %w", p.ID, ErrDuplicatePatient)
		}
		record := p.Clone()
		record.SyncLastScan()
		s.patients[p.ID] = &record
		s.order = append(s.order, p.ID)
	}

	first := s.patients[s.order[0]]
	s.session = Session{
		ActivePatientID: first.ID,
		NotesDraft:      first.ClinicalNotes,
		View:            ViewModel,
		ToolSeverity:    models.SeverityWatch,
	}
	s.session.Framing.Reset(first.ID)
	return s, nil
}

func (s *MemoryStore) Patients() []models.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Patient, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.patients[id].Clone())
	}
	return out
}

func (s *MemoryStore) Patient(id string) (models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return models.Patient{}, fmt.Errorf("%s: %w", id, ErrPatientNotFound)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	if out.Framing.Last != nil {
		last := *out.Framing.Last
		out.Framing.Last = &last
	}
	return out
}

// ActivePatient reads the same record AddAnnotation writes to.
func (s *MemoryStore) ActivePatient() models.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patients[s.session.ActivePatientID].Clone()
}

func (s *MemoryStore) SelectPatient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrPatientNotFound)
	}
	s.session.Framing.Reset(id)
	s.session.ActivePatientID = id
	s.session.NotesDraft = p.ClinicalNotes
	s.session.View = ViewModel
	return nil
}

// AddAnnotation does not check id uniqueness; the resolver's ids are UUIDs.
func (s *MemoryStore) AddAnnotation(patientID string, annotation models.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[patientID]
	if !ok {
		return fmt.Errorf("%s: %w", patientID, ErrPatientNotFound)
	}
	p.Annotations = append(p.Annotations, annotation)
	return nil
}

func (s *MemoryStore) SaveClinicalNotes(patientID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[patientID]
	if !ok {
		return fmt.Errorf("%s: %w", patientID, ErrPatientNotFound)
	}
	p.ClinicalNotes = text
	if s.session.ActivePatientID == patientID {
		s.session.NotesDraft = text
	}
	return nil
}

func (s *MemoryStore) UpdateDraft(text string) {
	s.mu.Lock()
	s.session.NotesDraft = text
	s.mu.Unlock()
}

func (s *MemoryStore) SetView(view View) error {
	if !view.Valid() {
		return invalid("view", fmt.Errorf("%q: %w", view, ErrInvalidView))
	}
	s.mu.Lock()
	s.session.View = view
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetToolSeverity(severity models.Severity) error {
	if !severity.Valid() {
		return invalid("severity", fmt.Errorf("%q: %w", severity, ErrInvalidSeverity))
	}
	s.mu.Lock()
	s.session.ToolSeverity = severity
	s.mu.Unlock()
	return nil
}

// RecordScan prepends scan as the newest entry and keeps LastScan in step.
func (s *MemoryStore) RecordScan(patientID string, scan models.Scan) error {
	if err := validateScan(scan); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[patientID]
	if !ok {
		return fmt.Errorf("%s: %w", patientID, ErrPatientNotFound)
	}
	p.ScanHistory = append([]models.Scan{scan}, p.ScanHistory...)
	p.SyncLastScan()
	return nil
}

func (s *MemoryStore) Markers(patientID string) ([]models.Marker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[patientID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", patientID, ErrPatientNotFound)
	}
	markers := make([]models.Marker, 0, len(p.Annotations))
	for _, a := range p.Annotations {
		markers = append(markers, models.MarkerFor(a))
	}
	return markers, nil
}

func (s *MemoryStore) FrameMesh(bounds Bounds) (Framing, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Framing.Apply(bounds)
}

func (s *MemoryStore) ReloadMesh() {
	s.mu.Lock()
	s.session.Framing.Reload()
	s.mu.Unlock()
}

func validateScan(scan models.Scan) error {
	if strings.TrimSpace(scan.ID) == "" {
		return invalid("id", fmt.Errorf("scan id required: %w", ErrInvalidScan))
	}
	if !scan.RiskLevel.Valid() {
		return invalid("riskLevel", fmt.Errorf("%q: %w", scan.RiskLevel, ErrInvalidScan))
	}
	if scan.Score < 0 || scan.Score > 100 {
		return invalid("score", fmt.Errorf("%.1f outside 0-100: %w", scan.Score, ErrInvalidScan))
	}
	if scan.MLConfidence < 0 || scan.MLConfidence > 100 {
		return invalid("mlConfidence", fmt.Errorf("%.1f outside 0-100: %w", scan.MLConfidence, ErrInvalidScan))
	}
	return nil
}
