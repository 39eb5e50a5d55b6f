package services

import (
	"testing"

	"github.com/fencerow/fencerow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAccess_CreatesPendingGrant(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")

	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStatusPending, grant.Status)
	assert.Equal(t, field.ID, grant.OwnerFieldID)
}

func TestRequestAccess_DoubleRequestYieldsOnePendingGrant(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")

	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	first, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)
	second, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	outgoing, err := env.access.ListOutgoing("bob")
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
}

func TestRequestAccess_OwnField(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	_, err := env.access.RequestAccess("alice", field.ID, nil)
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestDecide_ApproveThenRevoke(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)

	approved, err := env.access.Decide("alice", grant.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStatusApproved, approved.Status)
	assert.NotNil(t, approved.DecidedAt)

	revoked, err := env.access.Revoke("bob", grant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStatusRevoked, revoked.Status)
}

func TestDecide_OnlyOwnerMayDecide(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	env.createUser(t, "carol")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)

	_, err = env.access.Decide("carol", grant.ID, true)
	assert.ErrorIs(t, err, ErrNotFieldOwner)

	_, err = env.access.Decide("bob", grant.ID, true)
	assert.ErrorIs(t, err, ErrNotFieldOwner)
}

func TestDecide_AlreadyDecidedFails(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)
	_, err = env.access.Decide("alice", grant.ID, false)
	require.NoError(t, err)

	_, err = env.access.Decide("alice", grant.ID, true)
	assert.ErrorIs(t, err, ErrInvalidGrantState)
}

func TestRevoke_PendingGrantFails(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)

	_, err = env.access.Revoke("bob", grant.ID)
	assert.ErrorIs(t, err, ErrInvalidGrantState)
}

func TestRevoke_StrangerMayNotRevoke(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	env.createUser(t, "mallory")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)
	_, err = env.access.Decide("alice", grant.ID, true)
	require.NoError(t, err)

	_, err = env.access.Revoke("mallory", grant.ID)
	assert.ErrorIs(t, err, ErrNotGrantParty)
}

func TestRequestAccess_DenialDoesNotBlockReRequest(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)
	_, err = env.access.Decide("alice", grant.ID, false)
	require.NoError(t, err)

	fresh, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, grant.ID, fresh.ID)
	assert.Equal(t, models.GrantStatusPending, fresh.Status)
}

func TestResolveVisibility_OwnerApprovedRestricted(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	env.createUser(t, "carol")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	level, err := env.access.ResolveVisibility("alice", field)
	require.NoError(t, err)
	assert.Equal(t, VisibilityOwner, level)

	level, err = env.access.ResolveVisibility("bob", field)
	require.NoError(t, err)
	assert.Equal(t, VisibilityRestricted, level)

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)

	// Pending is not enough.
	level, err = env.access.ResolveVisibility("bob", field)
	require.NoError(t, err)
	assert.Equal(t, VisibilityRestricted, level)

	_, err = env.access.Decide("alice", grant.ID, true)
	require.NoError(t, err)

	level, err = env.access.ResolveVisibility("bob", field)
	require.NoError(t, err)
	assert.Equal(t, VisibilityApproved, level)

	// Carol never asked.
	level, err = env.access.ResolveVisibility("carol", field)
	require.NoError(t, err)
	assert.Equal(t, VisibilityRestricted, level)
}

func TestResolveVisibility_RevokedFallsBackToRestricted(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	field := env.createFieldFor(t, alice, "A", squareBoundary(0, 0, 0.001))

	grant, err := env.access.RequestAccess("bob", field.ID, nil)
	require.NoError(t, err)
	_, err = env.access.Decide("alice", grant.ID, true)
	require.NoError(t, err)
	_, err = env.access.Revoke("alice", grant.ID)
	require.NoError(t, err)

	level, err := env.access.ResolveVisibility("bob", field)
	require.NoError(t, err)
	assert.Equal(t, VisibilityRestricted, level)
}

func TestProjectField_NotesNeverLeaveOwner(t *testing.T) {
	env := newTestEnv(t, 100)
	alice := env.createUser(t, "alice")
	field, _, err := env.fields.CreateField("alice", FieldInput{
		Name:     "Home Quarter",
		Boundary: squareBoundary(0, 0, 0.001),
		Crop:     "canola",
		Notes:    "gate code 4417",
	})
	require.NoError(t, err)
	field.Owner = *alice

	owner := ProjectField(field, VisibilityOwner)
	assert.Equal(t, "gate code 4417", owner.Notes)
	assert.Equal(t, "Home Quarter", owner.Name)

	approved := ProjectField(field, VisibilityApproved)
	assert.Empty(t, approved.Notes)
	assert.Equal(t, "Home Quarter", approved.Name)
	assert.Equal(t, "canola", approved.Crop)

	restricted := ProjectField(field, VisibilityRestricted)
	assert.Empty(t, restricted.Notes)
	assert.Empty(t, restricted.Crop)
	assert.NotEqual(t, "Home Quarter", restricted.Name)
	assert.NotEmpty(t, restricted.Boundary)
}
