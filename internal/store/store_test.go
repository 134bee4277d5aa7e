package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sweeney/chronodesk/internal/model"
)

func sampleTimers() []model.CustomTimer {
	return []model.CustomTimer{
		{Name: "Tea", Phases: []model.TimerPhase{
			{Name: "Steep", DurationSeconds: 180, SoundTrack: 4, NotifyTargets: []int{0, 2}},
			{Name: "Cool", DurationSeconds: 60},
		}},
	}
}

func TestRoundTripAllBackends(t *testing.T) {
	t.Parallel()

	backends := map[string]func(t *testing.T) Backend{
		"mem": func(t *testing.T) Backend { return NewMemBackend() },
		"file": func(t *testing.T) Backend {
			b, err := NewFileBackend(filepath.Join(t.TempDir(), "data"))
			require.NoError(t, err)
			return b
		},
		"sqlite": func(t *testing.T) Backend {
			b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "kv.db"))
			require.NoError(t, err)
			return b
		},
	}

	for name, open := range backends {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			s := New(open(t))
			defer s.Close()

			alarms := []model.Alarm{{Hour: 7, Minute: 30, Enabled: true, SoundTrack: 3}, {Hour: 22, Minute: 0, SoundTrack: 1}}
			accounts := []model.PushAccount{{Name: "me", Key: "k1"}, {Name: "you", Key: "k2"}}

			require.NoError(t, s.SaveAlarms(ctx, alarms))
			require.NoError(t, s.SaveTimers(ctx, sampleTimers()))
			require.NoError(t, s.SaveAccounts(ctx, accounts))

			require.Equal(t, alarms, s.LoadAlarms(ctx))
			require.Equal(t, accounts, s.LoadAccounts(ctx))

			timers, seeded := s.LoadTimers(ctx)
			require.False(t, seeded)
			require.Equal(t, sampleTimers(), timers)
		})
	}
}

func TestMissingRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(NewMemBackend())

	require.Empty(t, s.LoadAlarms(ctx))
	require.Empty(t, s.LoadAccounts(ctx))

	timers, seeded := s.LoadTimers(ctx)
	require.True(t, seeded)
	require.Equal(t, model.DefaultTimers(), timers)
}

func TestMalformedRecordsYieldEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := NewMemBackend()
	for _, key := range []string{KeyAlarms, KeyTimers, KeyAccounts} {
		require.NoError(t, b.Put(ctx, key, []byte(`{"not": "a list"`)))
	}
	s := New(b)

	require.Empty(t, s.LoadAlarms(ctx))
	require.Empty(t, s.LoadAccounts(ctx))
	timers, seeded := s.LoadTimers(ctx)
	require.Empty(t, timers)
	require.False(t, seeded)
}

func TestSavedEmptyTimerListIsNotReseeded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(NewMemBackend())
	require.NoError(t, s.SaveTimers(ctx, nil))

	timers, seeded := s.LoadTimers(ctx)
	require.False(t, seeded)
	require.Empty(t, timers)
}

func TestTimerJSONShape(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := NewMemBackend()
	s := New(b)

	timers := []model.CustomTimer{{Name: "T", Phases: []model.TimerPhase{{Name: "P", DurationSeconds: 5, SoundTrack: 1}}}}
	require.NoError(t, s.SaveTimers(ctx, timers))

	raw, err := b.Get(ctx, KeyTimers)
	require.NoError(t, err)
	require.JSONEq(t,
		`[{"name":"T","phases":[{"name":"P","duration_seconds":5,"sound_track":1,"alertzy_key_indices":[]}]}]`,
		string(raw))

	// the caller's slice is not touched by the save normalisation
	require.Nil(t, timers[0].Phases[0].NotifyTargets)
}

func TestSaveErrorSurfaces(t *testing.T) {
	t.Parallel()

	b := NewMemBackend()
	b.PutError = errors.New("flash worn out")
	s := New(b)

	err := s.SaveAlarms(context.Background(), []model.Alarm{{Hour: 1}})
	require.ErrorIs(t, err, b.PutError)
}

func TestFileBackendAtomicWriteLeavesNoTemp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Put(ctx, "alarms", []byte("[]")))
	require.NoError(t, b.Put(ctx, "alarms", []byte(`[{"hour":1}]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "alarms.json", entries[0].Name())

	data, err := b.Get(ctx, "alarms")
	require.NoError(t, err)
	require.Equal(t, `[{"hour":1}]`, string(data))

	_, err = b.Get(ctx, "custom_timers")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	b, err := OpenBackend("file", dir)
	require.NoError(t, err)
	require.IsType(t, &FileBackend{}, b)

	b, err = OpenBackend("sqlite", dir)
	require.NoError(t, err)
	require.IsType(t, &SQLiteBackend{}, b)
	require.NoError(t, b.Close())

	_, err = OpenBackend("etcd", dir)
	require.Error(t, err)
}

func TestOpenBackendCreatesDataDir(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for _, driver := range []string{"file", "sqlite"} {
		dir := filepath.Join(t.TempDir(), "fresh", "data")

		b, err := OpenBackend(driver, dir)
		require.NoError(t, err, driver)

		require.NoError(t, b.Put(ctx, "alarms", []byte("[]")), driver)
		got, err := b.Get(ctx, "alarms")
		require.NoError(t, err, driver)
		require.Equal(t, []byte("[]"), got, driver)
		require.NoError(t, b.Close(), driver)

		info, err := os.Stat(dir)
		require.NoError(t, err, driver)
		require.True(t, info.IsDir(), driver)
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(NewMemBackend())
	require.NoError(t, s.SaveAccounts(ctx, []model.PushAccount{{Name: "a", Key: "k"}}))

	snap := s.Snapshot(ctx)
	require.Len(t, snap.Accounts, 1)
	require.Len(t, snap.Timers, 3)
	require.Empty(t, snap.Alarms)
}
