package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestZLoggerForwardsFormattedMessages(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZLogger(zerolog.New(&buf))

	zl.Info("exchanging %s token", "xsts")
	zl.Warn("silent reacquisition failed after %d attempts", 1)
	zl.Error("login failed: %v", "denied")

	out := buf.String()
	for _, want := range []string{
		`"level":"info"`, "exchanging xsts token",
		`"level":"warn"`, "silent reacquisition failed after 1 attempts",
		`"level":"error"`, "login failed: denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
