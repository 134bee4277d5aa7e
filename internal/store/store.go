// Package store persists timers, alarms and push accounts as JSON records
// over a key-value Backend.
//
// Loading never fails: a missing or unreadable record yields an empty
// collection and a warning in the log. Saving overwrites the whole
// collection.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sweeney/chronodesk/internal/logger"
	"github.com/sweeney/chronodesk/internal/model"
)

// Record keys.
const (
	KeyAlarms   = "alarms"
	KeyTimers   = "custom_timers"
	KeyAccounts = "alertzy_accounts"
)

// Store is the configuration store of the device.
type Store struct {
	backend Backend
}

// New returns a Store over b.
func New(b Backend) *Store {
	return &Store{backend: b}
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// LoadAlarms returns the saved alarms in stored order.
func (s *Store) LoadAlarms(ctx context.Context) []model.Alarm {
	var alarms []model.Alarm
	if _, err := s.load(ctx, KeyAlarms, &alarms); err != nil {
		return nil
	}
	return alarms
}

// SaveAlarms replaces the saved alarm list.
func (s *Store) SaveAlarms(ctx context.Context, alarms []model.Alarm) error {
	if alarms == nil {
		alarms = []model.Alarm{}
	}
	return s.save(ctx, KeyAlarms, alarms)
}

// LoadTimers returns the saved timers. When the record has never been
// written the preset routines are returned and seeded is true; the caller
// decides whether to persist them.
func (s *Store) LoadTimers(ctx context.Context) (timers []model.CustomTimer, seeded bool) {
	found, err := s.load(ctx, KeyTimers, &timers)
	if err != nil {
		return nil, false
	}
	if !found {
		return model.DefaultTimers(), true
	}

	for ti := range timers {
		for pi := range timers[ti].Phases {
			p := &timers[ti].Phases[pi]
			if len(p.NotifyTargets) == 0 {
				p.NotifyTargets = nil
			}
		}
	}
	return timers, false
}

// SaveTimers replaces the saved timer list.
func (s *Store) SaveTimers(ctx context.Context, timers []model.CustomTimer) error {
	out := model.CloneTimers(timers)
	if out == nil {
		out = []model.CustomTimer{}
	}
	for ti := range out {
		if out[ti].Phases == nil {
			out[ti].Phases = []model.TimerPhase{}
		}
		for pi := range out[ti].Phases {
			if out[ti].Phases[pi].NotifyTargets == nil {
				out[ti].Phases[pi].NotifyTargets = []int{}
			}
		}
	}
	return s.save(ctx, KeyTimers, out)
}

// LoadAccounts returns the saved push accounts.
func (s *Store) LoadAccounts(ctx context.Context) []model.PushAccount {
	var accounts []model.PushAccount
	if _, err := s.load(ctx, KeyAccounts, &accounts); err != nil {
		return nil
	}
	return accounts
}

// SaveAccounts replaces the saved account list.
func (s *Store) SaveAccounts(ctx context.Context, accounts []model.PushAccount) error {
	if accounts == nil {
		accounts = []model.PushAccount{}
	}
	return s.save(ctx, KeyAccounts, accounts)
}

// load decodes key into v. found is false when the key does not exist.
// Decode and read errors are logged and returned.
func (s *Store) load(ctx context.Context, key string, v any) (found bool, err error) {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		logger.WarnKV(ctx, "config record unreadable, using empty collection", "key", key, "error", err)
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		logger.WarnKV(ctx, "config record malformed, using empty collection", "key", key, "error", err)
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		logger.ErrorKV(ctx, "config record not saved", "key", key, "error", err)
		return err
	}
	logger.DebugKV(ctx, "config record saved", "key", key, "bytes", len(data))
	return nil
}

// Snapshot is every collection of the store at once.
type Snapshot struct {
	Alarms   []model.Alarm       `json:"alarms" yaml:"alarms"`
	Timers   []model.CustomTimer `json:"custom_timers" yaml:"custom_timers"`
	Accounts []model.PushAccount `json:"alertzy_accounts" yaml:"alertzy_accounts"`
}

// Snapshot loads all collections. Preset timers are reported when none have
// been saved yet.
func (s *Store) Snapshot(ctx context.Context) Snapshot {
	timers, _ := s.LoadTimers(ctx)
	return Snapshot{
		Alarms:   s.LoadAlarms(ctx),
		Timers:   timers,
		Accounts: s.LoadAccounts(ctx),
	}
}
