//go:build gui

package main

import (
	"context"

	"talkboard/gui"
	"talkboard/panel"
	"talkboard/render"
)

func runGUI(ctx context.Context, ctl *panel.Controller, th render.Thresholds) error {
	return gui.Run(gui.NewApp(ctx, ctl, th))
}
