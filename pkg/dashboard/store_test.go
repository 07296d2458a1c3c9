package dashboard

import (
	"errors"
	"testing"

	"github.com/mouthwatch/platform/pkg/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRoster() []models.Patient {
	return []models.Patient{
		{
			ID:   "1",
			Name: "James Thornton",
			ScanHistory: []models.Scan{
				{ID: "s1", Date: "Feb 21, 2026", RiskLevel: models.RiskRed, Score: 67.6, MLConfidence: 82.8, RiskFactors: []string{"Daily tobacco use"}},
				{ID: "s2", Date: "Feb 13, 2026", RiskLevel: models.RiskYellow, Score: 45.2, MLConfidence: 71.0},
			},
			ClinicalNotes: "• Suspicious lesion lower left buccal mucosa",
			Annotations: []models.Annotation{
				{ID: "ann1", Position: models.Vec3{-0.3, -0.2, 0.4}, Severity: models.SeverityUrgent, Label: "Suspicious lesion"},
			},
		},
		{
			ID:   "4",
			Name: "Emily Chen",
			ScanHistory: []models.Scan{
				{ID: "s7", Date: "Feb 20, 2026", RiskLevel: models.RiskRed, Score: 78.4, MLConfidence: 88.2},
			},
			ClinicalNotes: "• Prior oral cancer 2019",
		},
		{ID: "9", Name: "No Scans Yet"},
	}
}

func newFixtureStore(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(fixtureRoster())
	require.NoError(t, err)
	return store
}

func assertLastScanInvariant(t *testing.T, store Store) {
	t.Helper()
	for _, p := range store.Patients() {
		assert.Truef(t, p.LastScanConsistent(), "patient %s lastScan drifted from history", p.ID)
	}
}

func TestNewMemoryStoreSelectsFirstPatient(t *testing.T) {
	store := newFixtureStore(t)

	session := store.Session()
	assert.Equal(t, "1", session.ActivePatientID)
	assert.Equal(t, "• Suspicious lesion lower left buccal mucosa", session.NotesDraft)
	assert.Equal(t, ViewModel, session.View)
	assert.Equal(t, models.SeverityWatch, session.ToolSeverity)
	assert.Equal(t, "1", session.Framing.PatientID)
	assert.False(t, session.Framing.Framed)
}

func TestNewMemoryStoreRejectsBadRosters(t *testing.T) {
	_, err := NewMemoryStore(nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)

	_, err = NewMemoryStore([]models.Patient{{ID: "1"}, {ID: "1"}})
	assert.ErrorIs(t, err, ErrDuplicatePatient)

	_, err = NewMemoryStore([]models.Patient{{ID: "  ", Name: "Blank"}})
	assert.True(t, IsValidationError(err))
}

func TestNewMemoryStoreDerivesLastScanFromHistory(t *testing.T) {
	roster := fixtureRoster()
	roster[0].LastScan = &models.Scan{ID: "stale", RiskLevel: models.RiskGreen}

	store, err := NewMemoryStore(roster)
	require.NoError(t, err)

	p, err := store.Patient("1")
	require.NoError(t, err)
	require.NotNil(t, p.LastScan)
	assert.Equal(t, "s1", p.LastScan.ID)
	assertLastScanInvariant(t, store)
}

func TestStoreDoesNotAliasRoster(t *testing.T) {
	roster := fixtureRoster()
	store, err := NewMemoryStore(roster)
	require.NoError(t, err)

	roster[0].Annotations[0].Label = "mutated"
	p, err := store.Patient("1")
	require.NoError(t, err)
	assert.Equal(t, "Suspicious lesion", p.Annotations[0].Label)

	p.Annotations = append(p.Annotations, models.Annotation{ID: "x"})
	again, err := store.Patient("1")
	require.NoError(t, err)
	assert.Len(t, again.Annotations, 1)
}

func TestSelectPatientResetsDraftAndView(t *testing.T) {
	store := newFixtureStore(t)
	store.UpdateDraft("unsaved scribble")
	require.NoError(t, store.SetView(ViewCalendar))

	require.NoError(t, store.SelectPatient("4"))

	session := store.Session()
	assert.Equal(t, "4", session.ActivePatientID)
	assert.Equal(t, "• Prior oral cancer 2019", session.NotesDraft)
	assert.Equal(t, ViewModel, session.View)
	assert.Equal(t, "4", store.ActivePatient().ID)
}

func TestSelectPatientUnknownLeavesSessionAlone(t *testing.T) {
	store := newFixtureStore(t)
	store.UpdateDraft("draft")

	err := store.SelectPatient("missing")
	assert.ErrorIs(t, err, ErrPatientNotFound)

	session := store.Session()
	assert.Equal(t, "1", session.ActivePatientID)
	assert.Equal(t, "draft", session.NotesDraft)
}

func TestSelectSamePatientDiscardsDraft(t *testing.T) {
	store := newFixtureStore(t)
	store.UpdateDraft("unsaved")

	require.NoError(t, store.SelectPatient("1"))
	assert.Equal(t, "• Suspicious lesion lower left buccal mucosa", store.Session().NotesDraft)
}

func TestAddAnnotationAppendsInOrder(t *testing.T) {
	store := newFixtureStore(t)

	first := models.Annotation{ID: "a", Severity: models.SeverityInfo, Label: "first"}
	second := models.Annotation{ID: "b", Severity: models.SeverityModerate, Label: "second"}
	require.NoError(t, store.AddAnnotation("1", first))
	require.NoError(t, store.AddAnnotation("1", second))

	p, err := store.Patient("1")
	require.NoError(t, err)
	require.Len(t, p.Annotations, 3)
	assert.Equal(t, "ann1", p.Annotations[0].ID)
	assert.Equal(t, first, p.Annotations[1])
	assert.Equal(t, second, p.Annotations[2])

	other, err := store.Patient("4")
	require.NoError(t, err)
	assert.Empty(t, other.Annotations)
}

func TestAddAnnotationUnknownPatient(t *testing.T) {
	store := newFixtureStore(t)
	err := store.AddAnnotation("missing", models.Annotation{ID: "a"})
	assert.True(t, errors.Is(err, ErrPatientNotFound))
}

func TestSaveThenReselectKeepsNotes(t *testing.T) {
	store := newFixtureStore(t)

	require.NoError(t, store.SaveClinicalNotes("1", "new text"))
	assert.Equal(t, "new text", store.Session().NotesDraft)

	require.NoError(t, store.SelectPatient("4"))
	require.NoError(t, store.SelectPatient("1"))
	assert.Equal(t, "new text", store.Session().NotesDraft)

	p, err := store.Patient("1")
	require.NoError(t, err)
	assert.Equal(t, "new text", p.ClinicalNotes)
}

func TestSaveNotesForInactivePatientKeepsDraft(t *testing.T) {
	store := newFixtureStore(t)
	store.UpdateDraft("working on James")

	require.NoError(t, store.SaveClinicalNotes("4", "Emily update"))
	assert.Equal(t, "working on James", store.Session().NotesDraft)
}

func TestSaveNotesAcceptsEmptyText(t *testing.T) {
	store := newFixtureStore(t)
	require.NoError(t, store.SaveClinicalNotes("1", ""))

	p, err := store.Patient("1")
	require.NoError(t, err)
	assert.Equal(t, "", p.ClinicalNotes)
}

func TestRecordScanPrependsAndSyncsLastScan(t *testing.T) {
	store := newFixtureStore(t)

	scan := models.Scan{ID: "s-new", Date: "Feb 25, 2026", RiskLevel: models.RiskYellow, Score: 50, MLConfidence: 70}
	require.NoError(t, store.RecordScan("1", scan))
	require.NoError(t, store.RecordScan("9", scan))

	p, err := store.Patient("1")
	require.NoError(t, err)
	require.Len(t, p.ScanHistory, 3)
	assert.Equal(t, "s-new", p.ScanHistory[0].ID)
	assert.Equal(t, "s-new", p.LastScan.ID)

	fresh, err := store.Patient("9")
	require.NoError(t, err)
	require.NotNil(t, fresh.LastScan)
	assertLastScanInvariant(t, store)
}

func TestRecordScanValidates(t *testing.T) {
	store := newFixtureStore(t)

	cases := []models.Scan{
		{ID: "", RiskLevel: models.RiskRed},
		{ID: "x", RiskLevel: "purple"},
		{ID: "x", RiskLevel: models.RiskRed, Score: 101},
		{ID: "x", RiskLevel: models.RiskRed, MLConfidence: -1},
	}
	for _, scan := range cases {
		err := store.RecordScan("1", scan)
		assert.ErrorIs(t, err, ErrInvalidScan)
		assert.True(t, IsValidationError(err))
	}

	p, err := store.Patient("1")
	require.NoError(t, err)
	assert.Len(t, p.ScanHistory, 2)
}

func TestLastScanInvariantHoldsAcrossOperations(t *testing.T) {
	store := newFixtureStore(t)

	require.NoError(t, store.SelectPatient("4"))
	require.NoError(t, store.AddAnnotation("4", models.Annotation{ID: "z", Severity: models.SeverityInfo, Label: "z"}))
	require.NoError(t, store.SaveClinicalNotes("4", "notes"))
	store.UpdateDraft("draft")
	require.NoError(t, store.SetView(ViewCalendar))
	require.NoError(t, store.SetToolSeverity(models.SeverityUrgent))
	_, _, err := store.FrameMesh(Bounds{Max: models.Vec3{1, 1, 1}})
	require.NoError(t, err)
	store.ReloadMesh()

	assertLastScanInvariant(t, store)
}

func TestSetViewAndSeverityValidate(t *testing.T) {
	store := newFixtureStore(t)

	assert.ErrorIs(t, store.SetView("timeline"), ErrInvalidView)
	assert.ErrorIs(t, store.SetToolSeverity("critical"), ErrInvalidSeverity)

	require.NoError(t, store.SetToolSeverity(models.SeverityModerate))
	assert.Equal(t, models.SeverityModerate, store.Session().ToolSeverity)
}

func TestMarkersCarrySeverityColor(t *testing.T) {
	store := newFixtureStore(t)

	markers, err := store.Markers("1")
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, "#FF1744", markers[0].Color)
	assert.Equal(t, "Urgent", markers[0].SeverityLabel)

	_, err = store.Markers("missing")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestStoreFramingFollowsSelection(t *testing.T) {
	store := newFixtureStore(t)
	bounds := Bounds{Min: models.Vec3{-1, -1, -1}, Max: models.Vec3{1, 1, 1}}

	_, applied, err := store.FrameMesh(bounds)
	require.NoError(t, err)
	assert.True(t, applied)

	_, applied, err = store.FrameMesh(bounds)
	require.NoError(t, err)
	assert.False(t, applied)

	// Re-selecting the same patient does not reopen the cycle.
	require.NoError(t, store.SelectPatient("1"))
	_, applied, err = store.FrameMesh(bounds)
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, store.SelectPatient("4"))
	_, applied, err = store.FrameMesh(bounds)
	require.NoError(t, err)
	assert.True(t, applied)

	store.ReloadMesh()
	_, applied, err = store.FrameMesh(bounds)
	require.NoError(t, err)
	assert.True(t, applied)
}
