package preferences

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap/zaptest"
)

type failingKV struct{ *MemoryKV }

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func TestHistory_Push(t *testing.T) {
	h := History{"Paris", "Tokyo"}

	assert.Equal(t, History{"Tokyo", "Paris"}, h.Push("Tokyo"))
	assert.Equal(t, History{"Berlin", "Paris", "Tokyo"}, h.Push("Berlin"))
	assert.Equal(t, History{"paris", "Paris", "Tokyo"}, h.Push("paris"), "match is case-sensitive")
	assert.Equal(t, History{"Paris", "Tokyo"}, h, "receiver is not mutated")
}

func TestHistory_PushCapsAtFive(t *testing.T) {
	var h History
	for _, city := range []string{"A", "B", "C", "D", "E", "F", "C"} {
		h = h.Push(city)
		assert.LessOrEqual(t, len(h), MaxHistory)
	}
	assert.Equal(t, History{"C", "F", "E", "D", "B"}, h)
}

func TestStore_LoadDefaultsWhenEmpty(t *testing.T) {
	s := NewStore(NewMemoryKV(), zaptest.NewLogger(t))

	prefs := s.Load(context.Background())
	assert.Equal(t, History{}, prefs.History)
	assert.Equal(t, weather.Celsius, prefs.Units)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryKV(), zaptest.NewLogger(t))

	require.NoError(t, s.SaveHistory(ctx, History{"Tokyo", "Paris"}))
	require.NoError(t, s.SaveUnits(ctx, weather.Fahrenheit))

	prefs := s.Load(ctx)
	assert.Equal(t, History{"Tokyo", "Paris"}, prefs.History)
	assert.Equal(t, weather.Fahrenheit, prefs.Units)
}

func TestStore_MalformedValuesDegradeToDefaults(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, HistoryKey, "{not a list"))
	require.NoError(t, kv.Set(ctx, UnitsKey, "kelvin"))

	prefs := NewStore(kv, zaptest.NewLogger(t)).Load(ctx)
	assert.Equal(t, History{}, prefs.History)
	assert.Equal(t, weather.Celsius, prefs.Units)
}

func TestStore_LoadNormalizesStoredHistory(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, HistoryKey, `["A","A","","B","C","D","E","F"]`))

	prefs := NewStore(kv, zaptest.NewLogger(t)).Load(ctx)
	assert.Equal(t, History{"A", "B", "C", "D", "E"}, prefs.History)
}

func TestStore_ReadErrorsDegradeToDefaults(t *testing.T) {
	s := NewStore(failingKV{NewMemoryKV()}, zaptest.NewLogger(t))
	assert.Equal(t, Defaults(), s.Load(context.Background()))
}

func TestStore_SaveUnitsRejectsInvalid(t *testing.T) {
	s := NewStore(NewMemoryKV(), zaptest.NewLogger(t))
	assert.Error(t, s.SaveUnits(context.Background(), weather.Units("kelvin")))
}

func TestSQLiteKV_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	kv, err := NewKV(config.StorageConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)

	s := NewStore(kv, zaptest.NewLogger(t))
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.SaveHistory(ctx, History{"Lviv"}))
	require.NoError(t, s.SaveHistory(ctx, History{"Kyiv", "Lviv"}))
	require.NoError(t, s.SaveUnits(ctx, weather.Fahrenheit))
	require.NoError(t, s.Close())

	kv, err = OpenSQLite(path)
	require.NoError(t, err)
	defer kv.Close()

	prefs := NewStore(kv, zaptest.NewLogger(t)).Load(ctx)
	assert.Equal(t, History{"Kyiv", "Lviv"}, prefs.History)
	assert.Equal(t, weather.Fahrenheit, prefs.Units)

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewKV_UnknownDriver(t *testing.T) {
	_, err := NewKV(config.StorageConfig{Driver: "redis"})
	assert.Error(t, err)
}
