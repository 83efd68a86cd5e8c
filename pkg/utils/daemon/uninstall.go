package daemon

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Uninstall stops the user unit and removes it.
func Uninstall() error {
	unitPath, err := UnitPath()
	if err != nil {
		return err
	}

	logrus.Infof("stopping battnotify")

	err = runSystemctl("disable", "--now", unitName)
	if err != nil {
		return fmt.Errorf("failed to disable %s: %w", unitName, err)
	}

	logrus.Infof("removing systemd user unit")

	// if the file doesn't exist, we don't need to remove it
	_, err = os.Stat(unitPath)
	if err != nil {
		if os.IsNotExist(err) {
			return runSystemctl("daemon-reload")
		}
		return fmt.Errorf("failed to stat %s: %w", unitPath, err)
	}

	err = os.Remove(unitPath)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", unitPath, err)
	}

	return runSystemctl("daemon-reload")
}
