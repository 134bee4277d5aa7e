package audio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPlaceholders(t *testing.T) {
	t.Parallel()

	p := &ExecPlayer{
		args:      []string{"mpv", "--volume={percent}", "{file}", "--title=t{track}v{volume}"},
		tracksDir: "/clips",
	}

	got := p.Expand(3, 15)
	require.Equal(t, []string{"mpv", "--volume=50", filepath.Join("/clips", "0003.mp3"), "--title=t3v15"}, got)

	got = p.Expand(12, 99)
	require.Equal(t, "--volume=100", got[1])
	require.Equal(t, "--title=t12v30", got[3])
}

func TestNewExecPlayerRejectsBadSetup(t *testing.T) {
	t.Parallel()

	_, err := NewExecPlayer(context.Background(), "", t.TempDir())
	require.ErrorIs(t, err, ErrDisabled)

	_, err = NewExecPlayer(context.Background(), "definitely-not-a-player-binary {file}", t.TempDir())
	require.Error(t, err)

	_, err = NewExecPlayer(context.Background(), "sh -c true", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Player = Nop{}
	require.ErrorIs(t, p.Play(1, 10), ErrDisabled)
	require.NoError(t, p.Stop())
}

func TestFakeRecords(t *testing.T) {
	t.Parallel()

	f := &Fake{}
	require.NoError(t, f.Play(4, 20))
	require.Equal(t, 4, f.Playing)
	require.NoError(t, f.Stop())
	require.Equal(t, 0, f.Playing)
	require.Equal(t, []Play{{Track: 4, Volume: 20}}, f.Plays)
	require.Equal(t, 1, f.Stops)
}
