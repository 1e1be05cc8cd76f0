package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectMeshNoContainingMesh(t *testing.T) {
	db := newTestDB(t)
	addMesh(t, db, "m1", -70, -60, -70, -60, date(2024, 1, 1))

	meshes, err := SelectMesh(db, 10, 10, 20, 20)
	require.NoError(t, err)
	assert.Empty(t, meshes)
}

func TestSelectMeshRequiresBothPoints(t *testing.T) {
	db := newTestDB(t)
	// contains the start but not the end
	addMesh(t, db, "m1", -70, -60, -70, -60, date(2024, 1, 1))

	meshes, err := SelectMesh(db, -65, -65, -10, -10)
	require.NoError(t, err)
	assert.Empty(t, meshes)
}

func TestSelectMeshBoundaryInclusive(t *testing.T) {
	db := newTestDB(t)
	mesh := addMesh(t, db, "m1", -70, -60, -70, -60, date(2024, 1, 1))

	// both points exactly on bounding-box corners
	meshes, err := SelectMesh(db, -70, -70, -60, -60)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, mesh.ID, meshes[0].ID)
}

func TestSelectMeshLatestDateOnly(t *testing.T) {
	db := newTestDB(t)
	addMesh(t, db, "m1", -70, -60, -70, -60, date(2024, 1, 1))
	m2 := addMesh(t, db, "m2", -80, -50, -80, -50, date(2024, 1, 2))

	meshes, err := SelectMesh(db, -65, -65, -61, -61)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, m2.ID, meshes[0].ID)
}

func TestSelectMeshTimeOfDayDiscarded(t *testing.T) {
	db := newTestDB(t)
	morning := addMesh(t, db, "m1", -70, -60, -70, -60,
		time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC))
	evening := addMesh(t, db, "m2", -80, -50, -80, -50,
		time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC))

	meshes, err := SelectMesh(db, -65, -65, -61, -61)
	require.NoError(t, err)
	require.Len(t, meshes, 2)
	// same calendar date, so both survive, smallest extent first
	assert.Equal(t, morning.ID, meshes[0].ID)
	assert.Equal(t, evening.ID, meshes[1].ID)
}

func TestSelectMeshSortedBySize(t *testing.T) {
	db := newTestDB(t)
	big := addMesh(t, db, "big", -80, -50, -80, -50, date(2024, 1, 2))
	small := addMesh(t, db, "small", -70, -60, -70, -60, date(2024, 1, 2))

	meshes, err := SelectMesh(db, -65, -65, -61, -61)
	require.NoError(t, err)
	require.Len(t, meshes, 2)
	assert.Equal(t, small.ID, meshes[0].ID)
	assert.Equal(t, big.ID, meshes[1].ID)
}

func TestSelectMeshDeterministicOnEqualSize(t *testing.T) {
	db := newTestDB(t)
	first := addMesh(t, db, "m1", -70, -60, -70, -60, date(2024, 1, 2))
	second := addMesh(t, db, "m2", -70, -60, -70, -60, date(2024, 1, 2))

	for i := 0; i < 5; i++ {
		meshes, err := SelectMesh(db, -65, -65, -61, -61)
		require.NoError(t, err)
		require.Len(t, meshes, 2)
		assert.Equal(t, first.ID, meshes[0].ID)
		assert.Equal(t, second.ID, meshes[1].ID)
	}
}
