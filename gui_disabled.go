//go:build !gui

package main

import (
	"context"
	"errors"

	"talkboard/panel"
	"talkboard/render"
)

func runGUI(context.Context, *panel.Controller, render.Thresholds) error {
	return errors.New("talkboard: built without GUI support (rebuild with -tags gui)")
}
