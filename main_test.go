package main

import (
	"errors"
	"io"
	"testing"

	"talkboard/board"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o options)
	}{
		{name: "defaults", args: nil, check: func(t *testing.T, o options) {
			if o.gui || o.script || o.reset || o.lang != "" {
				t.Errorf("unexpected defaults %+v", o)
			}
		}},
		{name: "script with store", args: []string{"-script", "-store", "sqlite", "-statedir", "/tmp/x"}, check: func(t *testing.T, o options) {
			if !o.script || o.store != "sqlite" || o.stateDir != "/tmp/x" {
				t.Errorf("got %+v", o)
			}
		}},
		{name: "language", args: []string{"-lang", "zh-TW"}, check: func(t *testing.T, o options) {
			if o.lang != "zh-TW" {
				t.Errorf("lang = %q", o.lang)
			}
		}},
		{name: "unknown language", args: []string{"-lang", "fr"}, wantErr: true},
		{name: "gui and script", args: []string{"-gui", "-script"}, wantErr: true},
		{name: "stray argument", args: []string{"extra"}, wantErr: true},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, o)
			}
		})
	}
}

func TestParseFlagsUnknownLanguageSentinel(t *testing.T) {
	_, err := parseFlags([]string{"-lang", "de"}, io.Discard)
	if !errors.Is(err, board.ErrUnknownLanguage) {
		t.Errorf("err = %v, want ErrUnknownLanguage", err)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("got %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("got %q", got)
	}
}
