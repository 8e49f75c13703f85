package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfms-app/sfms-api/internal/models"
)

type fakeStore struct {
	identity *models.Identity
	err      error
	saved    map[string]*models.Identity
}

func (f *fakeStore) Load(ctx context.Context, sessionID string) (*models.Identity, error) {
	return f.identity, f.err
}

func (f *fakeStore) Save(ctx context.Context, sessionID string, identity *models.Identity) error {
	if f.saved == nil {
		f.saved = make(map[string]*models.Identity)
	}
	f.saved[sessionID] = identity
	return nil
}

func (f *fakeStore) Destroy(ctx context.Context, sessionID string) error {
	delete(f.saved, sessionID)
	return nil
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveSessionLookup(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestInstrumentReportsLookupOutcomes(t *testing.T) {
	obs := &recordingObserver{}

	hit := Instrument(&fakeStore{identity: &models.Identity{UserID: "u1"}}, obs)
	identity, err := hit.Load(context.Background(), "sid-1")
	require.NoError(t, err)
	require.NotNil(t, identity)

	miss := Instrument(&fakeStore{}, obs)
	identity, err = miss.Load(context.Background(), "sid-2")
	require.NoError(t, err)
	assert.Nil(t, identity)

	broken := Instrument(&fakeStore{err: errors.New("connection refused")}, obs)
	_, err = broken.Load(context.Background(), "sid-3")
	require.Error(t, err)

	assert.Equal(t, []string{"hit", "miss", "error"}, obs.outcomes)
}

func TestInstrumentPassesThroughWrites(t *testing.T) {
	inner := &fakeStore{}
	obs := &recordingObserver{}
	store := Instrument(inner, obs)

	identity := &models.Identity{UserID: "u1", Role: models.RoleStaff}
	require.NoError(t, store.Save(context.Background(), "sid-1", identity))
	assert.Equal(t, identity, inner.saved["sid-1"])

	require.NoError(t, store.Destroy(context.Background(), "sid-1"))
	assert.Empty(t, inner.saved)

	// writes are not lookups
	assert.Empty(t, obs.outcomes)
}

func TestInstrumentWithoutObserver(t *testing.T) {
	inner := &fakeStore{}
	assert.Equal(t, Store(inner), Instrument(inner, nil))
}

func TestNewSessionID(t *testing.T) {
	first, err := NewSessionID()
	require.NoError(t, err)
	second, err := NewSessionID()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.GreaterOrEqual(t, len(first), 43) // 32 random bytes, base64url
}
