package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mouthwatch/platform/pkg/common/config"
	"github.com/mouthwatch/platform/pkg/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRoster = `
patients:
  - id: "10"
    name: Ana Silva
    age: 52
    clinicalNotes: "• Referred by hygienist"
    scanHistory:
      - id: s100
        date: "Feb 22, 2026"
        riskLevel: red
        score: 70.5
        mlConfidence: 80
        riskFactors: ["Daily tobacco use"]
      - id: s99
        date: "Feb 1, 2026"
        riskLevel: yellow
        score: 40
        mlConfidence: 65
    appointments:
      - id: a100
        patientId: "10"
        date: "Feb 23, 2026"
        time: "8:00 AM"
        duration: 30
        type: Consultation
    annotations:
      - id: ann100
        position: [0.1, -0.2, 0.3]
        severity: moderate
        label: Lesion
  - id: "11"
    name: Ben Carter
`

func TestMockRosterIsConsistent(t *testing.T) {
	patients := Mock()
	require.Len(t, patients, 8)
	assert.Equal(t, "1", patients[0].ID)

	seen := make(map[string]struct{})
	for _, p := range patients {
		_, dup := seen[p.ID]
		assert.False(t, dup, "duplicate id %s", p.ID)
		seen[p.ID] = struct{}{}
		assert.True(t, p.LastScanConsistent(), "patient %s", p.ID)
		for _, a := range p.Annotations {
			assert.True(t, a.Severity.Valid())
		}
	}
}

func TestParseNormalizes(t *testing.T) {
	patients, err := Parse([]byte(sampleRoster))
	require.NoError(t, err)
	require.Len(t, patients, 2)

	ana := patients[0]
	require.NotNil(t, ana.LastScan)
	assert.Equal(t, "s100", ana.LastScan.ID)
	assert.Equal(t, models.Vec3{0.1, -0.2, 0.3}, ana.Annotations[0].Position)
	assert.Equal(t, models.SeverityModerate, ana.Annotations[0].Severity)

	ben := patients[1]
	assert.Nil(t, ben.LastScan)
	assert.NotNil(t, ben.ScanHistory)
	assert.NotNil(t, ben.Annotations)
}

func TestParseRejectsEmptyRoster(t *testing.T) {
	_, err := Parse([]byte("patients: []\n"))
	assert.Error(t, err)
}

func TestModelConversionKeepsCollections(t *testing.T) {
	original := Mock()[1]

	row, err := toModel(original, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Position)

	back, err := fromModel(&row)
	require.NoError(t, err)
	assert.Equal(t, original.ScanHistory, back.ScanHistory)
	assert.Equal(t, original.Appointments, back.Appointments)
	assert.Equal(t, original.Annotations, back.Annotations)
	assert.Nil(t, back.LastScan)
}

func TestLoadBySource(t *testing.T) {
	ctx := context.Background()

	patients, err := Load(ctx, &config.Config{RosterSource: SourceMock})
	require.NoError(t, err)
	assert.Len(t, patients, 8)

	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRoster), 0o600))
	patients, err = Load(ctx, &config.Config{RosterSource: SourceFile, RosterPath: path})
	require.NoError(t, err)
	assert.Len(t, patients, 2)

	_, err = Load(ctx, &config.Config{RosterSource: "ldap"})
	assert.Error(t, err)
}
