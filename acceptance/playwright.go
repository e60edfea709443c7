//go:build acceptance
// +build acceptance

package acceptance

import (
	"testing"

	"github.com/stretchr/testify/require"

	discover "github.com/networkteam/discover-e2e"
	"github.com/networkteam/discover-e2e/browser"
	"github.com/networkteam/discover-e2e/collector"
)

// OpenSession opens a context and page of the shared browser recording into recorder.
// The browser is launched by the first call; the session is closed on test cleanup.
func OpenSession(t *testing.T, harness *discover.Instance, recorder *collector.Recorder) *browser.Session {
	t.Helper()

	session, err := harness.OpenSession(recorder)
	require.NoError(t, err, "failed to open a %s session", harness.Config().Browser)
	t.Cleanup(func() { _ = session.Close() })

	return session
}
