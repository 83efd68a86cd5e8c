package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battnotify/hack"
)

const unitName = "battnotify.service"

var (
	// runSystemctl runs `systemctl --user args...`. Replaced in tests.
	runSystemctl = func(args ...string) error {
		out, err := exec.Command("systemctl", append([]string{"--user"}, args...)...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
		}
		return nil
	}
	executable = os.Executable
	configDir  = os.UserConfigDir
)

// UnitPath returns where the user unit is written.
func UnitPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("failed to find user config dir: %w", err)
	}
	return filepath.Join(dir, "systemd", "user", unitName), nil
}

// Install writes a systemd user unit running the current executable and
// starts it.
func Install(extraArgs ...string) error {
	exePath, err := executable()
	if err != nil {
		return fmt.Errorf("failed to get the path to the current executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the current executable: %w", err)
	}

	logrus.Infof("current executable path: %s", exePath)

	unitPath, err := UnitPath()
	if err != nil {
		return err
	}

	// The template runs "<exe> daemon"; extra args go before the subcommand
	// so global flags like --config apply.
	words := make([]string, 0, len(extraArgs)+1)
	for _, a := range append([]string{exePath}, extraArgs...) {
		words = append(words, quoteExecArg(a))
	}
	unit := strings.ReplaceAll(hack.SystemdUnitTemplate, "/path/to/battnotify", strings.Join(words, " "))

	logrus.Infof("writing systemd user unit to %s", unitPath)

	err = os.MkdirAll(filepath.Dir(unitPath), 0755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(unitPath), err)
	}

	_, err = os.Stat(unitPath)
	if err == nil {
		logrus.Errorf("%s already exists", unitPath)
		return fmt.Errorf("%s already exists. Did you forget to uninstall battnotify before installing it again? Run 'battnotify uninstall' first, or remove the file if battnotify is already gone", unitPath)
	}

	err = os.WriteFile(unitPath, []byte(unit), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", unitPath, err)
	}

	logrus.Infof("starting battnotify")

	if err := runSystemctl("daemon-reload"); err != nil {
		return err
	}
	if err := runSystemctl("enable", "--now", unitName); err != nil {
		return fmt.Errorf("failed to enable %s: %w", unitName, err)
	}

	return nil
}

// quoteExecArg makes s a single ExecStart word. systemd expands % specifiers
// and $ variables even inside quotes, so those are always escaped.
func quoteExecArg(s string) string {
	s = strings.NewReplacer("%", "%%", "$", "$$").Replace(s)
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\;") {
		return s
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
