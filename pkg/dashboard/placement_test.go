package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/mouthwatch/platform/pkg/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequenceIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ann-%d", n)
	}
}

func TestResolveBuildsAnnotation(t *testing.T) {
	r := NewResolver(sequenceIDs())
	point := models.Vec3{0.1, -0.2, 0.3}

	a, err := r.Resolve(point, models.SeverityModerate, "  Inflamed gum ", "check next visit")
	require.NoError(t, err)
	assert.Equal(t, models.Annotation{
		ID:       "ann-1",
		Position: point,
		Severity: models.SeverityModerate,
		Label:    "Inflamed gum",
		Note:     "check next visit",
	}, a)
}

func TestResolveBlankLabelCancels(t *testing.T) {
	r := NewResolver(sequenceIDs())
	for _, label := range []string{"", " ", "\t\n  "} {
		_, err := r.Resolve(models.Vec3{}, models.SeverityWatch, label, "note")
		assert.ErrorIs(t, err, ErrPlacementCancelled, "label %q", label)
		assert.False(t, IsValidationError(err))
	}
}

func TestResolveKeepsEmptyNote(t *testing.T) {
	r := NewResolver(nil)
	a, err := r.Resolve(models.Vec3{}, models.SeverityInfo, "Old restoration", "")
	require.NoError(t, err)
	assert.Equal(t, "", a.Note)
	assert.NotEmpty(t, a.ID)
}

func TestResolveRejectsUnknownSeverity(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.Resolve(models.Vec3{}, "severe", "label", "")
	assert.ErrorIs(t, err, ErrInvalidSeverity)
	assert.True(t, IsValidationError(err))
}

func TestResolveIDsAreUnique(t *testing.T) {
	r := NewResolver(nil)
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		a, err := r.Resolve(models.Vec3{}, models.SeverityInfo, "x", "")
		require.NoError(t, err)
		_, dup := seen[a.ID]
		require.False(t, dup, "duplicate id %s", a.ID)
		seen[a.ID] = struct{}{}
	}
}

func TestPickCapturesSeverityAtPickTime(t *testing.T) {
	r := NewResolver(sequenceIDs())
	pick, err := r.Pick("1", models.Vec3{1, 2, 3}, models.SeverityUrgent)
	require.NoError(t, err)

	a, err := pick.Confirm("Suspicious lesion", "")
	require.NoError(t, err)
	assert.Equal(t, models.SeverityUrgent, a.Severity)
	assert.Equal(t, models.Vec3{1, 2, 3}, a.Position)
}

func TestPickUsesInjectedIDs(t *testing.T) {
	r := NewResolver(sequenceIDs())
	pick, err := r.Pick("4", models.Vec3{0, 0, 1}, models.SeverityWatch)
	require.NoError(t, err)
	assert.Equal(t, "ann-1", pick.ID)

	a, err := pick.Confirm("Gum recession", "")
	require.NoError(t, err)
	assert.Equal(t, "ann-2", a.ID)
}

func TestPickRejectsUnknownSeverity(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.Pick("1", models.Vec3{}, "")
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestPicksAreIndependent(t *testing.T) {
	r := NewResolver(sequenceIDs())
	first, err := r.Pick("1", models.Vec3{0, 0, 1}, models.SeverityWatch)
	require.NoError(t, err)
	second, err := r.Pick("1", models.Vec3{0, 1, 0}, models.SeverityInfo)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = first.Confirm("   ", "")
	assert.ErrorIs(t, err, ErrPlacementCancelled)

	a, err := second.Confirm("Old restoration", "")
	require.NoError(t, err)
	assert.Equal(t, models.Vec3{0, 1, 0}, a.Position)
	assert.Equal(t, models.SeverityInfo, a.Severity)
}

func TestPickRegistryTakeRemoves(t *testing.T) {
	reg := NewPickRegistry(time.Minute)
	pick := Pick{ID: "p1", PatientID: "1", Severity: models.SeverityWatch, PickedAt: time.Now()}
	reg.Open(pick)
	assert.Equal(t, 1, reg.Pending())

	got, err := reg.Take("p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, 0, reg.Pending())

	_, err = reg.Take("p1")
	assert.ErrorIs(t, err, ErrPickNotFound)
}

func TestPickRegistryExpiry(t *testing.T) {
	base := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	reg := NewPickRegistry(5 * time.Minute)
	reg.now = func() time.Time { return base }

	reg.Open(Pick{ID: "old", PickedAt: base.Add(-10 * time.Minute)})
	reg.Open(Pick{ID: "fresh", PickedAt: base.Add(-time.Minute)})

	_, err := reg.Take("old")
	assert.ErrorIs(t, err, ErrPickNotFound)

	reg.Open(Pick{ID: "stale", PickedAt: base.Add(-6 * time.Minute)})
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Pending())

	_, err = reg.Take("fresh")
	assert.NoError(t, err)
}

func TestPickRegistryZeroTTLNeverExpires(t *testing.T) {
	reg := NewPickRegistry(0)
	reg.Open(Pick{ID: "p", PickedAt: time.Now().Add(-24 * time.Hour)})
	assert.Equal(t, 0, reg.Sweep())
	assert.NoError(t, reg.Cancel("p"))
	assert.ErrorIs(t, reg.Cancel("p"), ErrPickNotFound)
}
