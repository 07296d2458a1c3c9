package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity(" Urgent ")
	require.NoError(t, err)
	assert.Equal(t, SeverityUrgent, sev)

	_, err = ParseSeverity("critical")
	assert.Error(t, err)
}

func TestPatientCloneIsDeep(t *testing.T) {
	p := Patient{
		ID:          "1",
		ScanHistory: []Scan{{ID: "s1", RiskLevel: RiskRed, RiskFactors: []string{"Daily tobacco use"}}},
		Annotations: []Annotation{{ID: "a", Label: "Lesion"}},
	}
	p.SyncLastScan()

	clone := p.Clone()
	clone.Annotations[0].Label = "changed"
	clone.ScanHistory[0].RiskFactors[0] = "changed"
	clone.LastScan.Score = 99

	assert.Equal(t, "Lesion", p.Annotations[0].Label)
	assert.Equal(t, "Daily tobacco use", p.ScanHistory[0].RiskFactors[0])
	assert.Zero(t, p.LastScan.Score)
}

func TestLastScanConsistent(t *testing.T) {
	p := Patient{ScanHistory: []Scan{{ID: "s2"}, {ID: "s1"}}}
	assert.False(t, p.LastScanConsistent())

	p.SyncLastScan()
	assert.True(t, p.LastScanConsistent())
	assert.Equal(t, "s2", p.LastScan.ID)

	assert.True(t, Patient{}.LastScanConsistent())
}

func TestMarkerForUsesSeverityTable(t *testing.T) {
	m := MarkerFor(Annotation{ID: "x", Severity: SeverityModerate, Label: "New lesion"})
	assert.Equal(t, "#FF6D00", m.Color)
	assert.Equal(t, "Moderate", m.SeverityLabel)
	assert.Equal(t, "New lesion", m.Label)
}

func TestVec3UnmarshalRequiresThreeComponents(t *testing.T) {
	var v Vec3
	require.NoError(t, json.Unmarshal([]byte(`[0.5, -1, 2]`), &v))
	assert.Equal(t, Vec3{0.5, -1, 2}, v)

	for _, raw := range []string{`[0.5, 0.5]`, `[1, 2, 3, 4]`, `[]`, `{"x": 1}`, `[1, "a", 3]`} {
		var bad Vec3
		err := json.Unmarshal([]byte(raw), &bad)
		assert.ErrorIs(t, err, ErrInvalidVec3, raw)
		assert.Equal(t, Vec3{}, bad, raw)
	}

	var a Annotation
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a1","position":[1,2,3],"label":"x"}`), &a))
	assert.Equal(t, Vec3{1, 2, 3}, a.Position)
}
