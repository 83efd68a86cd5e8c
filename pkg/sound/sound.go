// Package sound plays notification sounds.
package sound

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// candidates are tried in order when no command is configured.
var candidates = []string{"paplay", "pw-play", "aplay"}

// lookPath and startCmd are swapped in tests.
var (
	lookPath = exec.LookPath
	startCmd = func(c *exec.Cmd) error {
		if err := c.Start(); err != nil {
			return err
		}
		go func() {
			if err := c.Wait(); err != nil {
				logrus.WithField("cmd", c.String()).Debugf("sound player exited: %v", err)
			}
		}()
		return nil
	}
)

// Player plays a sound file. Callers never pass an empty path.
type Player interface {
	Play(path string) error
}

// Nop discards every sound.
type Nop struct{}

func (Nop) Play(string) error { return nil }

// Command plays sounds by starting an external player. The player runs in
// the background; Play returns once it has started.
type Command struct {
	argv    []string
	baseDir string
}

// NewPlayer returns a Command for command (e.g. "paplay --volume 40000"), or
// for the first player found on PATH if command is empty. A relative sound
// is looked up in baseDir first and otherwise handed to the player as is, so
// names the player resolves itself keep working. Nop is returned if nothing
// is usable.
func NewPlayer(command, baseDir string) Player {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		for _, c := range candidates {
			if _, err := lookPath(c); err == nil {
				argv = []string{c}
				break
			}
		}
	}
	if len(argv) == 0 {
		logrus.Warnf("no sound player found (tried %s), sounds are disabled", strings.Join(candidates, ", "))
		return Nop{}
	}

	logrus.WithField("player", argv[0]).Debug("sound player selected")
	return &Command{argv: argv, baseDir: baseDir}
}

func (c *Command) Play(path string) error {
	path = c.resolve(path)

	args := append(append([]string{}, c.argv[1:]...), path)
	cmd := exec.Command(c.argv[0], args...)
	if err := startCmd(cmd); err != nil {
		return pkgerrors.Wrapf(err, "failed to start %s", c.argv[0])
	}
	return nil
}

func (c *Command) resolve(path string) string {
	if filepath.IsAbs(path) || c.baseDir == "" {
		return path
	}
	joined := filepath.Join(c.baseDir, path)
	if _, err := os.Stat(joined); err != nil {
		return path
	}
	return joined
}

// Recorder records played sounds.
type Recorder struct {
	mu     sync.Mutex
	played []string
}

func (r *Recorder) Play(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, path)
	return nil
}

func (r *Recorder) Played() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.played...)
}
