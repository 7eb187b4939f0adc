package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertFlightDerived checks captured log output for the success line of the
// flight at path. It keeps tests independent of the exact log layout.
func AssertFlightDerived(t *testing.T, logOutput, path string) {
	t.Helper()

	for line := range strings.Lines(logOutput) {
		if strings.Contains(line, "Flight derived") && strings.Contains(line, path) {
			return
		}
	}
	require.Fail(t, "flight not derived", "expected a success log line for flight '%s'", path)
}
