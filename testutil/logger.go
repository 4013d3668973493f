package testutil

import (
	"strings"

	"code.cloudfoundry.org/lager"
	"code.cloudfoundry.org/lager/lagertest"
)

// HasLog reports whether logger recorded a line at level whose message ends
// with action.
func HasLog(logger *lagertest.TestLogger, level lager.LogLevel, action string) bool {
	for _, log := range logger.Logs() {
		if log.LogLevel == level && strings.HasSuffix(log.Message, action) {
			return true
		}
	}
	return false
}
