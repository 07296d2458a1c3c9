// Package calendar lays appointments out on the clinic's weekly grid.
package calendar

import (
	"fmt"

	"github.com/mouthwatch/platform/pkg/common/models"
)

type Day struct {
	Name string `json:"name"`
	Date string `json:"date"` // "Feb 24"
}

type Week struct {
	Year  string   `json:"year"`
	Days  []Day    `json:"days"`
	Hours []string `json:"hours"`
}

// DefaultWeek is the Monday-Friday week the dashboard opens on.
func DefaultWeek() Week {
	return Week{
		Year: "2026",
		Days: []Day{
			{Name: "Monday", Date: "Feb 23"},
			{Name: "Tuesday", Date: "Feb 24"},
			{Name: "Wednesday", Date: "Feb 25"},
			{Name: "Thursday", Date: "Feb 26"},
			{Name: "Friday", Date: "Feb 27"},
		},
		Hours: []string{"8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM", "12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM"},
	}
}

// FullDate matches Appointment.Date, e.g. "Feb 24, 2026".
func (w Week) FullDate(d Day) string {
	return fmt.Sprintf("%s, %s", d.Date, w.Year)
}

type Entry struct {
	Day           string           `json:"day"`
	Date          string           `json:"date"`
	Hour          string           `json:"hour"`
	AppointmentID string           `json:"appointmentId"`
	PatientID     string           `json:"patientId"`
	PatientName   string           `json:"patientName"`
	RiskLevel     models.RiskLevel `json:"riskLevel,omitempty"`
	RiskColor     string           `json:"riskColor,omitempty"`
	Type          string           `json:"type"`
	Duration      int              `json:"duration"`
	Notes         string           `json:"notes"`
}

type Schedule struct {
	Week    Week    `json:"week"`
	Entries []Entry `json:"entries"`
	// Outside counts appointments that fall off the grid.
	Outside int `json:"outside"`
}

// Build places every appointment in its (date, hour) slot. When two
// appointments share a slot the first in roster order wins and the rest
// count as outside.
func Build(patients []models.Patient, week Week) Schedule {
	type slotKey struct{ date, hour string }

	days := make(map[string]Day, len(week.Days))
	for _, d := range week.Days {
		days[week.FullDate(d)] = d
	}
	hours := make(map[string]struct{}, len(week.Hours))
	for _, h := range week.Hours {
		hours[h] = struct{}{}
	}

	schedule := Schedule{Week: week, Entries: []Entry{}}
	taken := make(map[slotKey]struct{})
	for _, p := range patients {
		for _, appt := range p.Appointments {
			day, onDay := days[appt.Date]
			_, onHour := hours[appt.Time]
			key := slotKey{appt.Date, appt.Time}
			if _, clash := taken[key]; !onDay || !onHour || clash {
				schedule.Outside++
				continue
			}
			taken[key] = struct{}{}

			entry := Entry{
				Day:           day.Name,
				Date:          appt.Date,
				Hour:          appt.Time,
				AppointmentID: appt.ID,
				PatientID:     p.ID,
				PatientName:   p.Name,
				Type:          appt.Type,
				Duration:      appt.Duration,
				Notes:         appt.Notes,
			}
			if p.LastScan != nil {
				entry.RiskLevel = p.LastScan.RiskLevel
				entry.RiskColor = models.RiskConfig[p.LastScan.RiskLevel].Color
			}
			schedule.Entries = append(schedule.Entries, entry)
		}
	}
	return schedule
}

// SlotFor returns the entry at date ("Feb 24") and hour, if any.
func (s Schedule) SlotFor(date, hour string) (Entry, bool) {
	full := fmt.Sprintf("%s, %s", date, s.Week.Year)
	for _, e := range s.Entries {
		if e.Date == full && e.Hour == hour {
			return e, true
		}
	}
	return Entry{}, false
}

// ForDay returns the entries of one weekday in hour order.
func (s Schedule) ForDay(dayName string) []Entry {
	var out []Entry
	for _, h := range s.Week.Hours {
		for _, e := range s.Entries {
			if e.Day == dayName && e.Hour == h {
				out = append(out, e)
			}
		}
	}
	return out
}
