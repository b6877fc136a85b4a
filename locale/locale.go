package locale

import (
	"embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var embeddedFiles embed.FS

// Strings holds every UI label for one language.
type Strings struct {
	Title            string
	InputPlaceholder string
	AddShortcut      string
	Clear            string
	Rotate           string
	Colors           string
	Shortcuts        string
	Language         string
	VoicePrompt      string
	VoiceListening   string
	VoiceError       string
	VoiceUnsupported string
	ToolsLabel       string
	Copy             string
	NoShortcuts      string
}

// Table is the read-only localization table. It is total over All.
type Table struct {
	strings   map[Lang]Strings
	shortcuts map[Lang][]string
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the table built from the embedded locale files.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("locale: embedded tables are broken: %v", defaultErr))
	}
	return defaultTable
}

func Load() (*Table, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, l := range All {
		path := "locales/active." + string(l) + ".toml"
		content, err := embeddedFiles.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded locale file %s: %w", path, err)
		}
		if _, err := bundle.ParseMessageFileBytes(content, path); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	t := &Table{
		strings:   make(map[Lang]Strings, len(All)),
		shortcuts: make(map[Lang][]string, len(All)),
	}
	for _, l := range All {
		s, err := localize(i18n.NewLocalizer(bundle, string(l)))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", l, err)
		}
		t.strings[l] = s
	}

	raw, err := embeddedFiles.ReadFile("locales/shortcuts.toml")
	if err != nil {
		return nil, fmt.Errorf("failed to read default shortcuts: %w", err)
	}
	var phrases map[string][]string
	if _, err := toml.Decode(string(raw), &phrases); err != nil {
		return nil, fmt.Errorf("parsing default shortcuts: %w", err)
	}
	for _, l := range All {
		list, ok := phrases[string(l)]
		if !ok {
			return nil, fmt.Errorf("no default shortcuts for %s", l)
		}
		t.shortcuts[l] = list
	}
	return t, nil
}

func localize(loc *i18n.Localizer) (Strings, error) {
	var firstErr error
	get := func(id string) string {
		if firstErr != nil {
			return ""
		}
		s, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id})
		if err != nil {
			firstErr = fmt.Errorf("message %q: %w", id, err)
		}
		return s
	}
	s := Strings{
		Title:            get("title"),
		InputPlaceholder: get("input_placeholder"),
		AddShortcut:      get("add_shortcut"),
		Clear:            get("clear"),
		Rotate:           get("rotate"),
		Colors:           get("colors"),
		Shortcuts:        get("shortcuts"),
		Language:         get("language"),
		VoicePrompt:      get("voice_prompt"),
		VoiceListening:   get("voice_listening"),
		VoiceError:       get("voice_error"),
		VoiceUnsupported: get("voice_unsupported"),
		ToolsLabel:       get("tools_label"),
		Copy:             get("copy"),
		NoShortcuts:      get("no_shortcuts"),
	}
	return s, firstErr
}

// Strings returns the labels for l, falling back to English for unknown codes.
func (t *Table) Strings(l Lang) Strings {
	if s, ok := t.strings[l]; ok {
		return s
	}
	return t.strings[English]
}

// DefaultShortcuts returns a copy of the phrases seeded for l.
func (t *Table) DefaultShortcuts(l Lang) []string {
	src := t.shortcuts[l]
	out := make([]string, len(src))
	copy(out, src)
	return out
}
