package supercollider

import (
	"github.com/sirupsen/logrus" //nolint:depguard // this is used by Log for logging
)

// Log is the package-level logger. InstallQueue logs one info line per
// installation, and ThreadPool.RunTick logs a warning after a tick that
// exceeded Config.HelperWakeTimeout. It must
// never be called from Tick or TickMaster — logging inside a tick would
// violate the real-time no-blocking, no-allocation constraint.
var Log = logrus.New()
