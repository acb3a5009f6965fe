package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/storage"
)

// newLoggedFixture is newCLIFixture with the log written to buf.
func newLoggedFixture(t *testing.T, buf *bytes.Buffer) *cliFixture {
	t.Helper()
	mem := storage.NewMemoryStore()
	c := New(buf, LogInfo)
	c.Opener = storage.Shared(mem)
	c.IDGenerator = sequentialIDs()
	return &cliFixture{c: c, mem: mem, configPath: filepath.Join(t.TempDir(), "config.toml")}
}

func TestSaveLogsElapsedTime(t *testing.T) {
	var buf bytes.Buffer
	f := newLoggedFixture(t, &buf)

	f.mustRun(t, "add", "chart")
	out := buf.String()
	for _, want := range []string{appName, "Saved layout", "at=2", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}

	// nothing changed, nothing saved
	buf.Reset()
	f.mustRun(t, "show")
	if strings.Contains(buf.String(), "Saved layout") {
		t.Errorf("read-only command logged a save:\n%s", buf.String())
	}
}

func TestVerboseSwitchesToDebug(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantDebug bool
	}{
		{name: "default", args: []string{"show"}},
		{name: "long flag", args: []string{"--verbose", "show"}, wantDebug: true},
		{name: "short flag", args: []string{"-v", "show"}, wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := newLoggedFixture(t, &buf)
			f.mustRun(t, tt.args...)
			if got := strings.Contains(buf.String(), "config loaded"); got != tt.wantDebug {
				t.Errorf("debug record logged = %v, want %v:\n%s", got, tt.wantDebug, buf.String())
			}
			want := LogInfo
			if tt.wantDebug {
				want = LogDebug
			}
			if got := f.c.Logger.GetLevel(); got != want {
				t.Errorf("level = %v, want %v", got, want)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context did not fall back to log.Default")
	}
	l := newLogger(&bytes.Buffer{}, LogInfo)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("attached logger not returned")
	}
}
