// Package archive keeps the durable copy of saved clinical notes in Redis.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/common/models"
	"github.com/mouthwatch/platform/pkg/observability/metrics"
	"github.com/redis/go-redis/v9"
)

var ErrNotArchived = errors.New("no archived notes for patient")

// Record is one saved version of a patient's notes.
type Record struct {
	PatientID string    `json:"patientId"`
	Notes     string    `json:"notes"`
	EventID   string    `json:"eventId,omitempty"`
	SavedAt   time.Time `json:"savedAt"`
}

func currentKey(patientID string) string { return "notes:" + patientID }
func historyKey(patientID string) string { return "notes-history:" + patientID }

type NotesArchive struct {
	client      redis.Cmdable
	historySize int64
}

func NewNotesArchive(client redis.Cmdable, historySize int) *NotesArchive {
	if historySize <= 0 {
		historySize = 20
	}
	return &NotesArchive{client: client, historySize: int64(historySize)}
}

// Put overwrites the current notes and pushes the record onto the bounded
// history list in one transaction.
func (a *NotesArchive) Put(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, currentKey(rec.PatientID), payload, 0)
		pipe.LPush(ctx, historyKey(rec.PatientID), payload)
		pipe.LTrim(ctx, historyKey(rec.PatientID), 0, a.historySize-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("archiving notes for %s: %w", rec.PatientID, err)
	}
	return nil
}

func (a *NotesArchive) Get(ctx context.Context, patientID string) (Record, error) {
	raw, err := a.client.Get(ctx, currentKey(patientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotArchived
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// History returns saved versions newest first.
func (a *NotesArchive) History(ctx context.Context, patientID string) ([]Record, error) {
	items, err := a.client.LRange(ctx, historyKey(patientID), 0, a.historySize-1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			logger.WithPatient(patientID).WithError(err).Warn("skipping unreadable notes history entry")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Writer is the part of NotesArchive the event handler needs.
type Writer interface {
	Put(ctx context.Context, rec Record) error
}

// RecordFromEvent extracts a notes record from a notes.saved event.
func RecordFromEvent(event models.Event) (Record, error) {
	if event.Type != models.EventNotesSaved {
		return Record{}, fmt.Errorf("unexpected event type %q", event.Type)
	}
	patientID, _ := event.Data["patient_id"].(string)
	if patientID == "" {
		return Record{}, errors.New("notes event has no patient_id")
	}
	notes, ok := event.Data["notes"].(string)
	if !ok {
		return Record{}, errors.New("notes event has no notes text")
	}
	savedAt := event.Timestamp
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	return Record{PatientID: patientID, Notes: notes, EventID: event.ID, SavedAt: savedAt}, nil
}

// NewEventHandler archives notes.saved events and ignores every other type.
// Malformed notes events are logged and acknowledged so they do not block
// the partition.
func NewEventHandler(w Writer) func(ctx context.Context, event models.Event) error {
	return func(ctx context.Context, event models.Event) error {
		if event.Type != models.EventNotesSaved {
			return nil
		}
		rec, err := RecordFromEvent(event)
		if err != nil {
			logger.Log.WithError(err).WithField("event_id", event.ID).Warn("dropping malformed notes event")
			return nil
		}
		if err := w.Put(ctx, rec); err != nil {
			return err
		}
		metrics.NotesArchived.Inc()
		logger.WithPatient(rec.PatientID).WithField("event_id", event.ID).Info("clinical notes archived")
		return nil
	}
}
