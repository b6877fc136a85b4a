package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/atotto/clipboard"

	"talkboard/audio"
	"talkboard/board"
	"talkboard/config"
	"talkboard/locale"
	"talkboard/log"
	"talkboard/panel"
	"talkboard/shutdown"
	"talkboard/speech"
	"talkboard/storage"
	"talkboard/transcriber"
)

var version = "dev"

type options struct {
	lang       string
	store      string
	stateDir   string
	configPath string
	logPath    string
	device     string
	wav        string
	setup      bool
	gui        bool
	script     bool
	reset      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("talkboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.lang, "lang", "", "Board language: en, ja, zh-CN or zh-TW (default: saved or configured language)")
	fs.StringVar(&o.store, "store", "", "Storage backend: file, sqlite or memory (default: config, then file)")
	fs.StringVar(&o.stateDir, "statedir", "", "Directory holding the saved board (default: OS-specific location)")
	fs.StringVar(&o.configPath, "config", "", "Path to config.yaml")
	fs.StringVar(&o.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	fs.StringVar(&o.device, "device", "", "Use named microphone device")
	fs.StringVar(&o.wav, "wav", "", "Use a 16 kHz mono WAV file as the microphone")
	fs.BoolVar(&o.setup, "setup", false, "Select microphone device (otherwise uses system default)")
	fs.BoolVar(&o.gui, "gui", false, "Open the desktop window instead of the terminal UI")
	fs.BoolVar(&o.script, "script", false, "Headless mode: read board commands from stdin")
	fs.BoolVar(&o.reset, "reset", false, "Discard the saved board and start from defaults")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.lang != "" {
		if _, ok := locale.Parse(o.lang); !ok {
			return o, fmt.Errorf("-lang %q: %w", o.lang, board.ErrUnknownLanguage)
		}
	}
	if o.gui && o.script {
		return o, errors.New("-gui and -script are mutually exclusive")
	}
	return o, nil
}

// initCrashLog sends runtime crash reports to crash_log.txt next to the
// diagnostics log.
func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if opts.version {
		fmt.Printf("talkboard %s\n", version)
		return 0
	}

	logPath, err := log.ResolveDir(opts.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	thresholds, err := cfg.Thresholds()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	backend := firstNonEmpty(opts.store, cfg.Storage.Backend, storage.BackendFile)
	dir := firstNonEmpty(opts.stateDir, cfg.Storage.Dir)
	if dir == "" {
		if dir, err = storage.DefaultDir(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	kv, err := storage.Open(backend, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening %s store: %v\n", backend, err)
		return 1
	}
	defer kv.Close()

	tbl := locale.Default()
	defaults := board.Defaults(tbl, cfg.DefaultText)
	defaults.Language = cfg.Lang()
	state, source := board.Load(kv, tbl, cfg.DefaultText)
	if source == "defaults" {
		state = defaults
	}
	b := board.New(state)
	unsubscribe := b.Subscribe(board.Persist(kv))
	defer unsubscribe()
	if opts.reset {
		b.Reset(defaults)
		source = "reset"
	}
	if opts.lang != "" {
		l, _ := locale.Parse(opts.lang)
		if _, err := b.SetLanguage(l); err != nil {
			log.Warnf("language: %v", err)
		}
	}
	log.StateLoad(source, b.State().ShortcutCount())

	actx, device := openAudio(opts, cfg)
	if actx != nil {
		defer actx.Close()
	}

	tr, err := transcriber.New(cfg.Speech.Provider)
	providerName := "none"
	if err != nil {
		log.Warnf("speech disabled: %v", err)
	} else {
		providerName = tr.Name()
	}
	log.SessionStart(string(b.State().Language), backend, providerName)

	var rec speech.Recognizer
	if tr != nil {
		rec = speech.NewMic(actx, device, tr, speech.EndpointConfig{
			MaxUtterance:    cfg.Speech.MaxUtterance,
			TrailingSilence: cfg.Speech.TrailingSilence,
			SilenceLevel:    cfg.Speech.SilenceLevel,
		})
	}
	capture := speech.NewCapture(rec)
	ctl := panel.New(b, capture, tbl, cfg.Themes, clipboard.WriteAll)

	ctx, cancel := shutdown.Context(context.Background())
	defer cancel()
	defer capture.Cancel()

	switch {
	case opts.script:
		err = runScript(ctx, ctl, os.Stdin, os.Stdout)
	case opts.gui:
		err = runGUI(ctx, ctl, thresholds)
	default:
		err = runTUI(ctx, ctl, thresholds)
	}
	log.SessionEnd(b.Mutations())
	if err != nil {
		log.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// openAudio returns the capture context and device for speech input. Audio
// problems are not fatal; the board just runs without a microphone.
func openAudio(opts options, cfg *config.Config) (audio.Context, *audio.DeviceInfo) {
	if opts.wav != "" {
		fake, err := audio.NewFakeContextFromWAV(opts.wav, false)
		if err != nil {
			log.Warnf("wav input: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			return nil, nil
		}
		return fake, nil
	}

	actx, err := audio.NewContext()
	if err != nil {
		log.Warnf("audio context init error: %v", err)
		return nil, nil
	}

	var device *audio.DeviceInfo
	name := firstNonEmpty(opts.device, cfg.Speech.Device)
	switch {
	case opts.setup:
		device, err = audio.SelectDevice(actx, name)
		switch {
		case errors.Is(err, audio.ErrSelectionCancelled):
			log.Info("device selection skipped, using default device")
			device = nil
		case err != nil:
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			device = nil
		}
	case name != "":
		device, err = audio.FindDevice(actx, name)
		if err != nil {
			log.Warnf("%v", err)
			fmt.Fprintf(os.Stderr, "Warning: %v, using default device\n", err)
		}
	}
	if device != nil && audio.IsBluetooth(device.Name) {
		log.Warnf("bluetooth input %q may degrade audio quality", device.Name)
	}
	return actx, device
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
