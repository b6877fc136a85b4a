package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/boardlog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/boardlog" {
		t.Errorf("got %q, want /tmp/boardlog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(wd, "logs"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("TALKBOARD_LOG_PATH", "/tmp/talkboard-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/talkboard-env-log" {
		t.Errorf("got %q, want /tmp/talkboard-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("TALKBOARD_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("expected non-empty default directory")
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"diagnostics_log.txt", "phrases_log.txt"} {
		if _, err := os.Stat(filepath.Join(tmp, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestTranscript(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Transcript("ja-JP", "こんにちは")

	data, err := os.ReadFile(filepath.Join(tmp, "phrases_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "こんにちは") {
		t.Errorf("phrases_log.txt missing text, got: %q", line)
	}
	if !strings.Contains(line, "\tja-JP\t") {
		t.Errorf("expected locale column, got: %q", line)
	}
}

func TestEventsBeforeInitAreDropped(t *testing.T) {
	setupLogDir(t)
	// none of these may panic while the logger is closed
	Info("x")
	Errorf("x %d", 1)
	Transcript("en-US", "x")
	SpeechResult(SpeechMetrics{})
}

func TestDiagnosticsContainsEvent(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	StateLoad("defaults", 24)
	Close()

	data, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "state_load") {
		t.Errorf("diagnostics missing state_load: %q", data)
	}
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close()
}
