// Package audio plays numbered alert clips.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sweeney/chronodesk/internal/logger"
)

// MaxVolume is the top of the device volume scale.
const MaxVolume = 30

// ErrDisabled is returned by players that have no output.
var ErrDisabled = errors.New("audio: disabled")

// Player plays one clip at a time.
type Player interface {
	// Play starts track at volume (0..MaxVolume), replacing any clip
	// already playing. It does not wait for the clip to finish.
	Play(track, volume int) error
	// Stop silences playback. Safe to call when idle.
	Stop() error
}

// ExecPlayer runs an external command per clip.
//
// The command line may contain the placeholders {file}, {track}, {volume}
// (0..30) and {percent} (0..100). Clips are looked up as NNNN.mp3 in the
// tracks directory.
type ExecPlayer struct {
	ctx       context.Context
	args      []string
	tracksDir string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecPlayer parses command and checks that the tracks directory exists.
func NewExecPlayer(ctx context.Context, command, tracksDir string) (*ExecPlayer, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, ErrDisabled
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return nil, fmt.Errorf("audio player %q: %w", args[0], err)
	}
	if fi, err := os.Stat(tracksDir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("audio tracks dir %q not usable", tracksDir)
	}
	return &ExecPlayer{
		ctx:       logger.WithName(ctx, "audio"),
		args:      args,
		tracksDir: tracksDir,
	}, nil
}

// TrackPath returns the clip file for track.
func (p *ExecPlayer) TrackPath(track int) string {
	return filepath.Join(p.tracksDir, fmt.Sprintf("%04d.mp3", track))
}

// Expand substitutes the placeholders of the command line.
func (p *ExecPlayer) Expand(track, volume int) []string {
	volume = clampVolume(volume)
	r := strings.NewReplacer(
		"{file}", p.TrackPath(track),
		"{track}", strconv.Itoa(track),
		"{volume}", strconv.Itoa(volume),
		"{percent}", strconv.Itoa(volume*100/MaxVolume),
	)
	out := make([]string, len(p.args))
	for i, a := range p.args {
		out[i] = r.Replace(a)
	}
	return out
}

// Play implements Player.
func (p *ExecPlayer) Play(track, volume int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.killLocked()

	argv := p.Expand(track, volume)
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	p.cmd = cmd
	logger.DebugKV(p.ctx, "clip started", "track", track, "volume", volume, "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()
		if err != nil {
			logger.DebugKV(p.ctx, "clip ended", "track", track, "error", err)
		}
	}()
	return nil
}

// Stop implements Player.
func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.killLocked()
	return nil
}

func (p *ExecPlayer) killLocked() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	_ = p.cmd.Process.Kill()
	p.cmd = nil
}

// Nop is a Player with no output.
type Nop struct{}

// Play implements Player.
func (Nop) Play(int, int) error { return ErrDisabled }

// Stop implements Player.
func (Nop) Stop() error { return nil }

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}
