package board

import (
	"strings"
	"testing"

	"talkboard/locale"
	"talkboard/storage"
)

func TestRoundTrip(t *testing.T) {
	b := newTestBoard(t)
	states := []State{b.State()}
	states = append(states, b.SetText(""))
	states = append(states, b.ToggleRotation())
	s, _ := b.SetColors("#450a0a", "#fecaca")
	states = append(states, s)
	s, _ = b.SetLanguage(locale.ChineseTraditional)
	states = append(states, s)
	states = append(states, b.AddShortcut("謝謝你"))
	states = append(states, b.RemoveShortcut("init-zh-TW-2"))
	// a language whose list has been emptied entirely
	s, _ = b.SetLanguage(locale.Japanese)
	for _, sc := range s.ActiveShortcuts() {
		s = b.RemoveShortcut(sc.ID)
	}
	states = append(states, s)

	for i, want := range states {
		data, err := Encode(want)
		if err != nil {
			t.Fatalf("state %d: Encode: %v", i, err)
		}
		got, err := Decode(data, Defaults(locale.Default(), DefaultText))
		if err != nil {
			t.Fatalf("state %d: Decode: %v", i, err)
		}
		if !got.Equal(want) {
			t.Errorf("state %d: round trip mismatch\n got %+v\nwant %+v", i, got, want)
		}
	}
}

func TestDecodeFillsMissingLists(t *testing.T) {
	blob := `{"currentText":"x","bgColor":"#000000","textColor":"#ffffff","isRotated":true,"language":"ja","shortcuts":{"ja":[{"id":"1","text":"a"}]}}`
	s, err := Decode([]byte(blob), Defaults(locale.Default(), DefaultText))
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range locale.All {
		if s.Shortcuts[l] == nil {
			t.Errorf("%s list is nil", l)
		}
	}
	if !s.IsRotated || s.Language != locale.Japanese {
		t.Errorf("decoded %+v", s)
	}
}

func TestDecodeRepairsBadFields(t *testing.T) {
	blob := `{"currentText":"x","bgColor":"red","textColor":"#fff","language":"klingon","shortcuts":{}}`
	s, err := Decode([]byte(blob), Defaults(locale.Default(), DefaultText))
	if err != nil {
		t.Fatal(err)
	}
	if s.BgColor != Black || s.TextColor != White || s.Language != locale.English {
		t.Errorf("repaired state = %+v", s)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	for _, tt := range []struct {
		name string
		blob string
	}{
		{"absent", ""},
		{"corrupt", "{not json"},
		{"null", "null"},
		{"empty object", "{}"},
		{"array", "[]"},
		{"null shortcuts", `{"currentText":"","shortcuts":null}`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			if tt.blob != "" {
				kv.Set(StateKey, []byte(tt.blob))
			}
			s, source := Load(kv, locale.Default(), "Hi there")
			if source != "defaults" {
				t.Errorf("source = %q, want defaults", source)
			}
			if s.CurrentText != "Hi there" {
				t.Errorf("CurrentText = %q", s.CurrentText)
			}
			if len(s.ActiveShortcuts()) != 6 {
				t.Errorf("%d shortcuts", len(s.ActiveShortcuts()))
			}
		})
	}
}

func TestJSONFieldNames(t *testing.T) {
	data, err := Encode(Defaults(locale.Default(), DefaultText))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"currentText"`, `"bgColor"`, `"textColor"`, `"isRotated"`, `"language"`, `"shortcuts"`, `"zh-TW"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded blob missing %s", key)
		}
	}
}
