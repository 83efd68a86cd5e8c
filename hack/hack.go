// Package hack holds files used when installing battnotify.
package hack

import _ "embed"

// SystemdUnitTemplate is the systemd user unit. /path/to/battnotify is
// replaced with the installed executable.
//
//go:embed battnotify.service
var SystemdUnitTemplate string
