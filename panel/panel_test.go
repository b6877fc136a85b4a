package panel

import (
	"context"
	"errors"
	"testing"
	"time"

	"talkboard/board"
	"talkboard/config"
	"talkboard/locale"
	"talkboard/speech"
)

func newController(t *testing.T, rec speech.Recognizer) (*Controller, *string) {
	t.Helper()
	tbl := locale.Default()
	b := board.New(board.Defaults(tbl, board.DefaultText))
	var copied string
	c := New(b, speech.NewCapture(rec), tbl, config.DefaultThemes(), func(s string) error {
		copied = s
		return nil
	})
	return c, &copied
}

func TestSaveAndShowShortcut(t *testing.T) {
	c, _ := newController(t, nil)
	c.SetText("Thank you")
	c.SaveShortcut()

	list := c.Board().Shortcuts()
	if list[0].Text != "Thank you" {
		t.Fatalf("first shortcut = %q, want the saved phrase", list[0].Text)
	}

	c.Clear()
	if got := c.Board().State().CurrentText; got != "" {
		t.Fatalf("CurrentText after Clear = %q", got)
	}
	c.ShowShortcut(list[0].ID)
	if got := c.Board().State().CurrentText; got != "Thank you" {
		t.Errorf("CurrentText = %q, want Thank you", got)
	}

	c.ShowShortcut("missing")
	if got := c.Board().State().CurrentText; got != "Thank you" {
		t.Errorf("unknown id changed the phrase to %q", got)
	}

	c.DeleteShortcut(list[0].ID)
	if len(c.Board().Shortcuts()) != len(list)-1 {
		t.Errorf("DeleteShortcut did not remove the entry")
	}
}

func TestSaveBlankPhraseIgnored(t *testing.T) {
	c, _ := newController(t, nil)
	before := len(c.Board().Shortcuts())
	c.SetText("   ")
	c.SaveShortcut()
	if len(c.Board().Shortcuts()) != before {
		t.Error("blank phrase was saved")
	}
}

func TestThemes(t *testing.T) {
	c, _ := newController(t, nil)
	if c.ThemeLabel() != "Inverted" {
		t.Fatalf("initial theme = %q, want Inverted", c.ThemeLabel())
	}
	if err := c.NextTheme(); err != nil {
		t.Fatal(err)
	}
	s := c.Board().State()
	if c.ThemeLabel() != "Modern" || s.BgColor != board.White || s.TextColor != board.Black {
		t.Errorf("after NextTheme: %q %s/%s", c.ThemeLabel(), s.BgColor, s.TextColor)
	}

	for range len(c.Themes()) - 1 {
		c.NextTheme()
	}
	if c.ThemeLabel() != "Inverted" {
		t.Errorf("themes did not wrap: %q", c.ThemeLabel())
	}

	c.Board().SetColors("#123456", "#abcdef")
	if c.ThemeIndex() != -1 || c.ThemeLabel() != "#123456/#abcdef" {
		t.Errorf("custom colors: index %d label %q", c.ThemeIndex(), c.ThemeLabel())
	}
	if err := c.NextTheme(); err != nil || c.ThemeLabel() != "Inverted" {
		t.Errorf("NextTheme from custom = %q, %v", c.ThemeLabel(), err)
	}
	if err := c.ApplyTheme(99); err == nil {
		t.Error("ApplyTheme out of range succeeded")
	}
}

func TestLanguageCycleSwitchesStrings(t *testing.T) {
	c, _ := newController(t, nil)
	en := c.Strings().Title
	c.NextLanguage()
	if c.Board().State().Language != locale.Japanese {
		t.Fatalf("Language = %q, want ja", c.Board().State().Language)
	}
	if c.Strings().Title == en {
		t.Error("strings did not follow the language")
	}
	if err := c.SetLanguage("xx"); !errors.Is(err, board.ErrUnknownLanguage) {
		t.Errorf("SetLanguage(xx) = %v", err)
	}
}

func TestSpeakSetsPhrase(t *testing.T) {
	rec := speech.NewFakeRecognizer()
	c, _ := newController(t, rec)
	c.SetLanguage(locale.ChineseTraditional)

	if c.Voice() != VoicePrompt {
		t.Fatalf("Voice = %v, want prompt", c.Voice())
	}
	if err := c.Speak(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Voice() != VoiceListening || c.VoiceLabel() != c.Strings().VoiceListening {
		t.Errorf("Voice = %v %q, want listening", c.Voice(), c.VoiceLabel())
	}
	if got := rec.Configs()[0].Locale; got != "zh-TW" {
		t.Errorf("locale = %q, want zh-TW", got)
	}

	rec.Session(0).Resolve("謝謝")
	select {
	case o := <-c.Capture().Outcomes():
		c.HandleOutcome(o)
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome")
	}
	if got := c.Board().State().CurrentText; got != "謝謝" {
		t.Errorf("CurrentText = %q", got)
	}
	if c.Voice() != VoicePrompt {
		t.Errorf("Voice = %v after result", c.Voice())
	}
}

func TestSpeakErrorKeepsPhrase(t *testing.T) {
	rec := speech.NewFakeRecognizer()
	rec.PushError(errors.New("offline"))
	c, _ := newController(t, rec)
	c.Speak(context.Background())
	o := <-c.Capture().Outcomes()
	c.HandleOutcome(o)
	if got := c.Board().State().CurrentText; got != board.DefaultText {
		t.Errorf("CurrentText = %q, want unchanged", got)
	}
	if c.Voice() != VoiceError || c.VoiceLabel() != c.Strings().VoiceError {
		t.Errorf("Voice = %v %q", c.Voice(), c.VoiceLabel())
	}
}

func TestSpeakUnsupported(t *testing.T) {
	c, _ := newController(t, nil)
	if err := c.Speak(context.Background()); !errors.Is(err, speech.ErrUnsupported) {
		t.Errorf("Speak = %v, want ErrUnsupported", err)
	}
	if c.Voice() != VoiceUnsupported || c.VoiceLabel() != "N/A" {
		t.Errorf("Voice = %v %q", c.Voice(), c.VoiceLabel())
	}
}

func TestCopyPhrase(t *testing.T) {
	c, copied := newController(t, nil)
	c.SetText("Please wait")
	if err := c.CopyPhrase(); err != nil {
		t.Fatal(err)
	}
	if *copied != "Please wait" {
		t.Errorf("copied %q", *copied)
	}

	tbl := locale.Default()
	noClip := New(board.New(board.Defaults(tbl, "x")), nil, tbl, nil, nil)
	if err := noClip.CopyPhrase(); err == nil {
		t.Error("CopyPhrase without clipboard succeeded")
	}
	if len(noClip.Themes()) != 7 {
		t.Errorf("nil themes should fall back to the presets")
	}
}
