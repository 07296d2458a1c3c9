package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mouthwatch/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the roster in a single table with JSON columns for
// the nested collections.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type patientModel struct {
	ID            string         `gorm:"primaryKey;column:id"`
	Position      int            `gorm:"column:position;index"`
	Name          string         `gorm:"column:name"`
	Age           int            `gorm:"column:age"`
	Email         string         `gorm:"column:email"`
	Phone         string         `gorm:"column:phone"`
	ClinicalNotes string         `gorm:"column:clinical_notes"`
	ScanHistory   datatypes.JSON `gorm:"column:scan_history"`
	Appointments  datatypes.JSON `gorm:"column:appointments"`
	Annotations   datatypes.JSON `gorm:"column:annotations"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
}

func (patientModel) TableName() string { return "patients" }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&patientModel{})
}

// Load returns the roster in stored position order.
func (r *Repository) Load(ctx context.Context) ([]models.Patient, error) {
	var rows []patientModel
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	patients := make([]models.Patient, 0, len(rows))
	for i := range rows {
		p, err := fromModel(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("patient %s: %w", rows[i].ID, err)
		}
		patients = append(patients, p)
	}
	return normalize(patients), nil
}

// Save upserts every patient, keeping roster order in the position column.
func (r *Repository) Save(ctx context.Context, patients []models.Patient) error {
	now := time.Now().UTC()
	rows := make([]patientModel, 0, len(patients))
	for i, p := range patients {
		row, err := toModel(p, i)
		if err != nil {
			return fmt.Errorf("patient %s: %w", p.ID, err)
		}
		row.CreatedAt = now
		row.UpdatedAt = now
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"position", "name", "age", "email", "phone", "clinical_notes",
			"scan_history", "appointments", "annotations", "updated_at",
		}),
	}).Create(&rows).Error
}

// Seed writes the mock roster when the table is empty.
func (r *Repository) Seed(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&patientModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.Save(ctx, Mock())
}

func toModel(p models.Patient, position int) (patientModel, error) {
	row := patientModel{
		ID:            p.ID,
		Position:      position,
		Name:          p.Name,
		Age:           p.Age,
		Email:         p.Email,
		Phone:         p.Phone,
		ClinicalNotes: p.ClinicalNotes,
	}
	var err error
	if row.ScanHistory, err = marshalColumn(p.ScanHistory); err != nil {
		return patientModel{}, err
	}
	if row.Appointments, err = marshalColumn(p.Appointments); err != nil {
		return patientModel{}, err
	}
	if row.Annotations, err = marshalColumn(p.Annotations); err != nil {
		return patientModel{}, err
	}
	return row, nil
}

func fromModel(row *patientModel) (models.Patient, error) {
	p := models.Patient{
		ID:            row.ID,
		Name:          row.Name,
		Age:           row.Age,
		Email:         row.Email,
		Phone:         row.Phone,
		ClinicalNotes: row.ClinicalNotes,
	}
	if err := unmarshalColumn(row.ScanHistory, &p.ScanHistory); err != nil {
		return models.Patient{}, fmt.Errorf("scan_history: %w", err)
	}
	if err := unmarshalColumn(row.Appointments, &p.Appointments); err != nil {
		return models.Patient{}, fmt.Errorf("appointments: %w", err)
	}
	if err := unmarshalColumn(row.Annotations, &p.Annotations); err != nil {
		return models.Patient{}, fmt.Errorf("annotations: %w", err)
	}
	return p, nil
}

func marshalColumn(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func unmarshalColumn(data datatypes.JSON, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
