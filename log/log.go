package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog    zerolog.Logger
	diagFile   *os.File
	phraseFile *os.File
	logMu      sync.Mutex
	logReady   bool
	pid        int
	dir        string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absPath(flagPath)
	}

	// Priority 2: TALKBOARD_LOG_PATH environment variable
	if envPath := os.Getenv("TALKBOARD_LOG_PATH"); envPath != "" {
		return absPath(envPath)
	}

	return getDefaultDir()
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error
	diagFile, err = os.OpenFile(filepath.Join(dir, "diagnostics_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	phraseFile, err = os.OpenFile(filepath.Join(dir, "phrases_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if phraseFile != nil {
		phraseFile.Close()
		phraseFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Transcript appends a recognized phrase to phrases_log.txt.
func Transcript(lang, text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, lang, text)
	phraseFile.WriteString(line)
}

func SessionStart(lang, store, provider string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("lang", lang).
		Str("store", store).
		Str("provider", provider).
		Msg("session_start")
}

func SessionEnd(mutations int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("mutations", mutations).
		Msg("session_end")
}

func StateLoad(source string, shortcuts int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("source", source).
		Int("shortcuts", shortcuts).
		Msg("state_load")
}

func SpeechStart(locale string) {
	if !logReady {
		return
	}
	diagLog.Info().Str("locale", locale).Msg("speech_start")
}

type SpeechMetrics struct {
	AudioS     float64
	EncodedKB  float64
	TotalMs    float64
	Peak       float64
	Provider   string
	Endpointed bool
}

func SpeechResult(m SpeechMetrics) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("provider", m.Provider).
		Float64("audio_s", m.AudioS).
		Float64("encoded_kb", m.EncodedKB).
		Float64("total_ms", m.TotalMs).
		Float64("peak", m.Peak).
		Bool("endpointed", m.Endpointed).
		Msg("speech_result")
}
