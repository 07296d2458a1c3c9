package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type RiskLevel string

const (
	RiskGreen  RiskLevel = "green"
	RiskYellow RiskLevel = "yellow"
	RiskRed    RiskLevel = "red"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskGreen, RiskYellow, RiskRed:
		return true
	}
	return false
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWatch    Severity = "watch"
	SeverityModerate Severity = "moderate"
	SeverityUrgent   Severity = "urgent"
)

// Severities lists the annotation severities in legend order.
var Severities = []Severity{SeverityInfo, SeverityWatch, SeverityModerate, SeverityUrgent}

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWatch, SeverityModerate, SeverityUrgent:
		return true
	}
	return false
}

func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q", raw)
	}
	return s, nil
}

// ErrInvalidVec3 rejects points that are not exactly three finite numbers.
var ErrInvalidVec3 = errors.New("point must be three finite numbers")

// Vec3 is a point in the model's local coordinate space.
type Vec3 [3]float64

// UnmarshalJSON requires exactly three components. A JSON null leaves v
// untouched, so callers that need presence decode into *Vec3.
func (v *Vec3) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVec3, err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("%w: got %d components", ErrInvalidVec3, len(raw))
	}
	for i, c := range raw {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: component %d", ErrInvalidVec3, i)
		}
	}
	copy(v[:], raw)
	return nil
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

type Scan struct {
	ID           string    `json:"id" yaml:"id"`
	Date         string    `json:"date" yaml:"date"`
	RiskLevel    RiskLevel `json:"riskLevel" yaml:"riskLevel"`
	Score        float64   `json:"score" yaml:"score"`
	MLConfidence float64   `json:"mlConfidence" yaml:"mlConfidence"`
	RiskFactors  []string  `json:"riskFactors" yaml:"riskFactors"`
}

type Annotation struct {
	ID       string   `json:"id" yaml:"id"`
	Position Vec3     `json:"position" yaml:"position"`
	Severity Severity `json:"severity" yaml:"severity"`
	Label    string   `json:"label" yaml:"label"`
	Note     string   `json:"note" yaml:"note"`
}

// Appointment.PatientID is a back-reference only.
type Appointment struct {
	ID        string `json:"id" yaml:"id"`
	PatientID string `json:"patientId" yaml:"patientId"`
	Date      string `json:"date" yaml:"date"`
	Time      string `json:"time" yaml:"time"`
	Duration  int    `json:"duration" yaml:"duration"`
	Type      string `json:"type" yaml:"type"`
	Notes     string `json:"notes" yaml:"notes"`
}

// Patient keeps LastScan equal to ScanHistory[0] whenever the history is
// non-empty. History is newest first.
type Patient struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Age           int           `json:"age" yaml:"age"`
	Email         string        `json:"email" yaml:"email"`
	Phone         string        `json:"phone" yaml:"phone"`
	LastScan      *Scan         `json:"lastScan,omitempty" yaml:"lastScan,omitempty"`
	ScanHistory   []Scan        `json:"scanHistory" yaml:"scanHistory"`
	Appointments  []Appointment `json:"appointments" yaml:"appointments"`
	ClinicalNotes string        `json:"clinicalNotes" yaml:"clinicalNotes"`
	Annotations   []Annotation  `json:"annotations" yaml:"annotations"`
}

// Clone returns a deep copy so callers cannot alias store state.
func (p Patient) Clone() Patient {
	out := p
	if p.LastScan != nil {
		scan := p.LastScan.clone()
		out.LastScan = &scan
	}
	out.ScanHistory = make([]Scan, len(p.ScanHistory))
	for i, s := range p.ScanHistory {
		out.ScanHistory[i] = s.clone()
	}
	out.Appointments = append([]Appointment(nil), p.Appointments...)
	out.Annotations = append([]Annotation(nil), p.Annotations...)
	if out.Appointments == nil {
		out.Appointments = []Appointment{}
	}
	if out.Annotations == nil {
		out.Annotations = []Annotation{}
	}
	return out
}

// SyncLastScan re-derives LastScan from the head of ScanHistory.
func (p *Patient) SyncLastScan() {
	if len(p.ScanHistory) == 0 {
		return
	}
	head := p.ScanHistory[0].clone()
	p.LastScan = &head
}

// LastScanConsistent reports whether the LastScan invariant holds.
func (p Patient) LastScanConsistent() bool {
	if len(p.ScanHistory) == 0 {
		return true
	}
	if p.LastScan == nil {
		return false
	}
	return p.LastScan.Equal(p.ScanHistory[0])
}

func (s Scan) clone() Scan {
	s.RiskFactors = append([]string(nil), s.RiskFactors...)
	if s.RiskFactors == nil {
		s.RiskFactors = []string{}
	}
	return s
}

func (s Scan) Equal(o Scan) bool {
	if s.ID != o.ID || s.Date != o.Date || s.RiskLevel != o.RiskLevel ||
		s.Score != o.Score || s.MLConfidence != o.MLConfidence ||
		len(s.RiskFactors) != len(o.RiskFactors) {
		return false
	}
	for i := range s.RiskFactors {
		if s.RiskFactors[i] != o.RiskFactors[i] {
			return false
		}
	}
	return true
}

type DisplayConfig struct {
	Color string `json:"color"`
	Label string `json:"label"`
	Bg    string `json:"bg"`
}

var SeverityConfig = map[Severity]DisplayConfig{
	SeverityInfo:     {Color: "#2196F3", Label: "Informational", Bg: "rgba(33,150,243,0.15)"},
	SeverityWatch:    {Color: "#FFD600", Label: "Watch", Bg: "rgba(255,214,0,0.15)"},
	SeverityModerate: {Color: "#FF6D00", Label: "Moderate", Bg: "rgba(255,109,0,0.15)"},
	SeverityUrgent:   {Color: "#FF1744", Label: "Urgent", Bg: "rgba(255,23,68,0.15)"},
}

var RiskConfig = map[RiskLevel]DisplayConfig{
	RiskGreen:  {Color: "#00E676", Label: "Low Risk", Bg: "rgba(0,230,118,0.15)"},
	RiskYellow: {Color: "#FFD600", Label: "Moderate Risk", Bg: "rgba(255,214,0,0.15)"},
	RiskRed:    {Color: "#FF1744", Label: "High Risk", Bg: "rgba(255,23,68,0.15)"},
}

// Marker is what the mesh renderer draws for one annotation.
type Marker struct {
	ID            string   `json:"id"`
	Position      Vec3     `json:"position"`
	Severity      Severity `json:"severity"`
	Color         string   `json:"color"`
	SeverityLabel string   `json:"severityLabel"`
	Label         string   `json:"label"`
	Note          string   `json:"note"`
}

func MarkerFor(a Annotation) Marker {
	cfg := SeverityConfig[a.Severity]
	return Marker{
		ID:            a.ID,
		Position:      a.Position,
		Severity:      a.Severity,
		Color:         cfg.Color,
		SeverityLabel: cfg.Label,
		Label:         a.Label,
		Note:          a.Note,
	}
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // annotation.added, notes.saved, scan.recorded
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventAnnotationAdded = "annotation.added"
	EventNotesSaved      = "notes.saved"
	EventScanRecorded    = "scan.recorded"
)
