package services

import (
	"testing"

	"github.com/fencerow/fencerow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateField_ComputesCentroid(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")

	field, _, err := env.fields.CreateField("alice", FieldInput{
		Name:     "A",
		Boundary: squareBoundary(10, 50, 0.002),
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.001, field.CentroidLng, 1e-6)
	assert.InDelta(t, 50.001, field.CentroidLat, 1e-6)
}

func TestCreateField_RejectsMalformedBoundary(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")

	_, _, err := env.fields.CreateField("alice", FieldInput{
		Name:     "Broken",
		Boundary: `{"type":"Polygon","coordinates":[[[0,0],[1,1]]]}`,
	})
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestCreateField_RejectsSameOwnerOverlap(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")

	first, _, err := env.fields.CreateField("alice", FieldInput{
		Name:     "First",
		Boundary: squareBoundary(0, 0, 0.001),
	})
	require.NoError(t, err)

	_, overlap, err := env.fields.CreateField("alice", FieldInput{
		Name:     "Second",
		Boundary: squareBoundary(0.0005, 0.0005, 0.001),
	})
	assert.ErrorIs(t, err, ErrFieldOverlap)
	require.NotNil(t, overlap)
	assert.Contains(t, overlap.OverlappingFields, first.ID)
}

func TestCreateField_AllowsCrossOwnerOverlap(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	_, _, err := env.fields.CreateField("alice", FieldInput{
		Name:     "Alice's",
		Boundary: squareBoundary(0, 0, 0.001),
	})
	require.NoError(t, err)

	_, _, err = env.fields.CreateField("bob", FieldInput{
		Name:     "Bob's",
		Boundary: squareBoundary(0.0005, 0.0005, 0.001),
	})
	assert.NoError(t, err)
}

func TestCreateField_WritesAuditEntry(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")

	field, _, err := env.fields.CreateField("alice", FieldInput{
		Name:     "A",
		Boundary: squareBoundary(0, 0, 0.001),
	})
	require.NoError(t, err)

	entries, err := env.fields.GetFieldHistory("alice", field.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.UpdateTypeCreated, entries[0].UpdateType)
}

func TestUpdateField_OnlyOwner(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	field, _, err := env.fields.CreateField("alice", FieldInput{
		Name:     "A",
		Boundary: squareBoundary(0, 0, 0.001),
	})
	require.NoError(t, err)

	crop := "wheat"
	_, _, err = env.fields.UpdateField("bob", field.ID, FieldPatch{Crop: &crop})
	assert.ErrorIs(t, err, ErrNotFieldOwner)
}

func TestUpdateField_AttributesOnlyKeepsAdjacency(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	a, _, err := env.fields.CreateField("alice", FieldInput{Name: "A", Boundary: squareBoundary(0, 0, 0.001)})
	require.NoError(t, err)
	_, _, err = env.fields.CreateField("bob", FieldInput{Name: "B", Boundary: squareBoundary(0.001, 0, 0.001)})
	require.NoError(t, err)

	before := adjacentIDs(t, env, a.ID)
	require.Len(t, before, 1)

	crop := "barley"
	updated, _, err := env.fields.UpdateField("alice", a.ID, FieldPatch{Crop: &crop})
	require.NoError(t, err)
	assert.Equal(t, "barley", updated.Crop)

	assert.Equal(t, before, adjacentIDs(t, env, a.ID))

	entries, err := env.fields.GetFieldHistory("alice", a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.UpdateTypeAttributes, entries[0].UpdateType)
}

func TestUpdateField_BoundaryChangeRecomputesAdjacency(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	a, _, err := env.fields.CreateField("alice", FieldInput{Name: "A", Boundary: squareBoundary(0, 0, 0.001)})
	require.NoError(t, err)
	b, _, err := env.fields.CreateField("bob", FieldInput{Name: "B", Boundary: squareBoundary(0.001, 0, 0.001)})
	require.NoError(t, err)

	require.Contains(t, adjacentIDs(t, env, a.ID), b.ID)

	// Move A far away; the pair must disappear from both sides.
	far := squareBoundary(1, 1, 0.001)
	_, _, err = env.fields.UpdateField("alice", a.ID, FieldPatch{Boundary: &far})
	require.NoError(t, err)

	assert.Empty(t, adjacentIDs(t, env, a.ID))
	assert.Empty(t, adjacentIDs(t, env, b.ID))

	entries, err := env.fields.GetFieldHistory("alice", a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UpdateTypeGeometry, entries[0].UpdateType)
	assert.NotEmpty(t, entries[0].OldValue)
	assert.NotEmpty(t, entries[0].NewValue)
}

func TestDeleteField_CascadesAdjacencyAndGrants(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	a, _, err := env.fields.CreateField("alice", FieldInput{Name: "A", Boundary: squareBoundary(0, 0, 0.001)})
	require.NoError(t, err)
	b, _, err := env.fields.CreateField("bob", FieldInput{Name: "B", Boundary: squareBoundary(0.001, 0, 0.001)})
	require.NoError(t, err)

	_, err = env.access.RequestAccess("bob", a.ID, nil)
	require.NoError(t, err)

	require.NoError(t, env.fields.DeleteField("alice", a.ID))

	// No dangling adjacency on the surviving field.
	assert.Empty(t, adjacentIDs(t, env, b.ID))

	pairs, err := env.adjacencyRepo.CountPairs()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pairs)

	outgoing, err := env.access.ListOutgoing("bob")
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	_, err = env.fields.GetField("alice", a.ID)
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestDeleteField_OnlyOwner(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	a, _, err := env.fields.CreateField("alice", FieldInput{Name: "A", Boundary: squareBoundary(0, 0, 0.001)})
	require.NoError(t, err)

	assert.ErrorIs(t, env.fields.DeleteField("bob", a.ID), ErrNotFieldOwner)
}

func TestGetNearbyFields_ProjectionFollowsGrants(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	a, _, err := env.fields.CreateField("alice", FieldInput{Name: "A", Boundary: squareBoundary(0, 0, 0.001)})
	require.NoError(t, err)
	b, _, err := env.fields.CreateField("bob", FieldInput{
		Name:     "Bob's Quarter",
		Boundary: squareBoundary(0.001, 0, 0.001),
		Crop:     "lentils",
		Notes:    "private agronomy notes",
	})
	require.NoError(t, err)

	nearby, err := env.fields.GetNearbyFields("alice")
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, b.ID, nearby[0].ID)
	assert.Equal(t, VisibilityRestricted, nearby[0].Level)
	assert.Empty(t, nearby[0].Crop)
	assert.Empty(t, nearby[0].Notes)
	assert.NotEqual(t, "Bob's Quarter", nearby[0].Name)

	// Approval upgrades the projection but still hides notes.
	grant, err := env.access.RequestAccess("alice", b.ID, &a.ID)
	require.NoError(t, err)
	_, err = env.access.Decide("bob", grant.ID, true)
	require.NoError(t, err)

	nearby, err = env.fields.GetNearbyFields("alice")
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, VisibilityApproved, nearby[0].Level)
	assert.Equal(t, "Bob's Quarter", nearby[0].Name)
	assert.Equal(t, "lentils", nearby[0].Crop)
	assert.Empty(t, nearby[0].Notes)
}

func TestGetNearbyFields_DeduplicatesAcrossOwnFields(t *testing.T) {
	env := newTestEnv(t, 150)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	// Two of Alice's fields flank one of Bob's; Bob's field must show
	// up once, not twice.
	_, _, err := env.fields.CreateField("alice", FieldInput{Name: "West", Boundary: squareBoundary(0, 0, 0.001)})
	require.NoError(t, err)
	_, _, err = env.fields.CreateField("alice", FieldInput{Name: "East", Boundary: squareBoundary(0.002, 0, 0.001)})
	require.NoError(t, err)
	b, _, err := env.fields.CreateField("bob", FieldInput{Name: "Middle", Boundary: squareBoundary(0.001, 0, 0.001)})
	require.NoError(t, err)

	nearby, err := env.fields.GetNearbyFields("alice")
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, b.ID, nearby[0].ID)
}

func TestGetFieldHistory_OwnerOnly(t *testing.T) {
	env := newTestEnv(t, 100)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	a, _, err := env.fields.CreateField("alice", FieldInput{Name: "A", Boundary: squareBoundary(0, 0, 0.001)})
	require.NoError(t, err)

	_, err = env.fields.GetFieldHistory("bob", a.ID)
	assert.ErrorIs(t, err, ErrNotFieldOwner)
}
