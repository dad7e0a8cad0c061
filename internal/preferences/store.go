// Package preferences persists the recent-search list and unit preference
// through an injected key-value backend.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap"
)

const (
	HistoryKey = "recentSearches"
	UnitsKey   = "unitPreference"
)

// KV is a durable string key-value store scoped to one user profile.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

type Preferences struct {
	History History       `json:"history"`
	Units   weather.Units `json:"units"`
}

func Defaults() Preferences {
	return Preferences{History: History{}, Units: weather.Celsius}
}

type Store struct {
	kv     KV
	logger *zap.Logger
}

func NewStore(kv KV, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger.With(zap.String("component", "preferences")),
	}
}

// Load never fails: missing, malformed or unreadable values fall back to
// the defaults.
func (s *Store) Load(ctx context.Context) Preferences {
	prefs := Defaults()

	if raw, ok := s.get(ctx, HistoryKey); ok {
		var h History
		if err := json.Unmarshal([]byte(raw), &h); err != nil {
			s.logger.Warn("Ignoring malformed search history", zap.Error(err))
		} else {
			prefs.History = h.normalize()
		}
	}

	if raw, ok := s.get(ctx, UnitsKey); ok {
		units, err := weather.ParseUnits(raw)
		if err != nil {
			s.logger.Warn("Ignoring unknown unit preference", zap.String("value", raw))
		} else {
			prefs.Units = units
		}
	}

	return prefs
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to read preference", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return raw, ok
}

func (s *Store) SaveHistory(ctx context.Context, h History) error {
	if h == nil {
		h = History{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, HistoryKey, string(data)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *Store) SaveUnits(ctx context.Context, u weather.Units) error {
	if !u.Valid() {
		return fmt.Errorf("save units: invalid value %q", u)
	}
	if err := s.kv.Set(ctx, UnitsKey, string(u)); err != nil {
		return fmt.Errorf("save units: %w", err)
	}
	return nil
}

// Ping checks backend health when the backend supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.kv.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}
