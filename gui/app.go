//go:build gui

// Package gui is the desktop board window. It draws the same raster the
// terminal view uses and routes every widget through a panel.Controller.
package gui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/go-gl/glfw/v3.3/glfw"

	"talkboard/board"
	"talkboard/locale"
	"talkboard/log"
	"talkboard/panel"
	"talkboard/render"
	"talkboard/speech"
)

const plainBaseSize = 18

type App struct {
	ctx context.Context
	ctl *panel.Controller
	th  render.Thresholds

	fyneApp fyne.App
	window  fyne.Window

	boardView *canvas.Raster
	plain     *canvas.Text
	drawer    *fyne.Container
	header    *widget.Label
	entry     *widget.Entry
	voice     *widget.Label
	indicator *Indicator
	status    *widget.Label
	themes    *widget.Select
	langs     *widget.Select
	list      *widget.List
	buttons   map[string]*widget.Button

	shortcuts []board.Shortcut
	selected  widget.ListItemID
}

func NewApp(ctx context.Context, ctl *panel.Controller, th render.Thresholds) *App {
	return &App{ctx: ctx, ctl: ctl, th: th, selected: -1, buttons: make(map[string]*widget.Button)}
}

// Run builds the window and blocks in the fyne event loop until the window
// closes or ctx is cancelled.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.talkboard.gui")
	a.fyneApp.Settings().SetTheme(&boardTheme{})
	a.window = a.fyneApp.NewWindow("talkboard")
	a.build()

	if desk, ok := a.fyneApp.(desktop.App); ok {
		menu := fyne.NewMenu("talkboard",
			fyne.NewMenuItem("Show", func() { a.window.Show() }),
			fyne.NewMenuItem("Quit", func() { a.fyneApp.Quit() }),
		)
		desk.SetSystemTrayMenu(menu)
		if icon, err := trayIcon(); err == nil {
			desk.SetSystemTrayIcon(icon)
		} else {
			log.Warnf("tray icon: %v", err)
		}
	}

	unsubscribe := a.ctl.Board().Subscribe(func(board.State) {
		fyne.Do(a.refresh)
	})
	defer unsubscribe()

	go a.watchOutcomes()
	go func() {
		<-a.ctx.Done()
		fyne.Do(a.fyneApp.Quit)
	}()

	a.window.Resize(fitSize(0.8))
	a.window.CenterOnScreen()
	a.refresh()
	a.window.ShowAndRun()
	a.indicator.Stop()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

// fitSize is a share of the primary monitor's work area.
func fitSize(share float32) fyne.Size {
	screenW, screenH := 1280, 800
	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	}
	return fyne.NewSize(float32(screenW)*share, float32(screenH)*share)
}

func (a *App) build() {
	s := a.ctl.Strings()

	a.boardView = canvas.NewRaster(a.boardImage)
	a.plain = canvas.NewText("", nil)
	a.plain.Alignment = fyne.TextAlignCenter
	a.plain.TextStyle = fyne.TextStyle{Bold: true}
	surface := container.NewStack(a.boardView, container.NewCenter(a.plain))

	a.header = widget.NewLabel(s.Title)
	a.header.TextStyle = fyne.TextStyle{Bold: true}

	a.entry = widget.NewEntry()
	a.entry.OnChanged = func(text string) {
		if text != a.ctl.Board().State().CurrentText {
			a.ctl.SetText(text)
		}
	}

	a.buttons["save"] = widget.NewButton(s.AddShortcut, a.ctl.SaveShortcut)
	a.buttons["clear"] = widget.NewButton(s.Clear, a.ctl.Clear)
	a.buttons["rotate"] = widget.NewButton(s.Rotate, a.ctl.Rotate)
	a.buttons["speak"] = widget.NewButton(s.VoicePrompt, a.speak)
	a.buttons["copy"] = widget.NewButton(s.Copy, a.copyPhrase)

	a.themes = widget.NewSelect(themeLabels(a.ctl), func(label string) {
		for i, th := range a.ctl.Themes() {
			if th.Label == label && i != a.ctl.ThemeIndex() {
				if err := a.ctl.ApplyTheme(i); err != nil {
					log.Warnf("theme: %v", err)
				}
				return
			}
		}
	})
	a.langs = widget.NewSelect(langLabels(), func(label string) {
		for _, l := range locale.All {
			if l.Label() == label && l != a.ctl.Board().State().Language {
				if err := a.ctl.SetLanguage(l); err != nil {
					log.Warnf("language: %v", err)
				}
				return
			}
		}
	})

	a.list = widget.NewList(
		func() int { return len(a.shortcuts) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil, widget.NewButton("✕", nil), widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(a.shortcuts) {
				return
			}
			sc := a.shortcuts[id]
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(sc.Text)
			row.Objects[1].(*widget.Button).OnTapped = func() { a.ctl.DeleteShortcut(sc.ID) }
		},
	)
	a.list.OnSelected = func(id widget.ListItemID) {
		if id < len(a.shortcuts) {
			a.ctl.ShowShortcut(a.shortcuts[id].ID)
		}
		a.list.UnselectAll()
	}

	a.indicator = NewIndicator()
	a.voice = widget.NewLabel("")
	a.status = widget.NewLabel("")

	controls := container.NewHBox(
		a.buttons["save"], a.buttons["clear"], a.buttons["rotate"],
		a.buttons["speak"], a.buttons["copy"],
		layout.NewSpacer(), a.themes, a.langs,
	)
	voiceRow := container.NewHBox(a.indicator, a.voice, a.status)
	listBox := container.NewGridWrap(fyne.NewSize(480, 160), a.list)
	a.drawer = container.NewVBox(a.header, a.entry, controls, voiceRow, listBox)

	toggle := widget.NewButton(s.ToolsLabel, func() {
		if a.drawer.Visible() {
			a.drawer.Hide()
		} else {
			a.drawer.Show()
		}
	})
	bottom := container.NewVBox(a.drawer, container.NewHBox(layout.NewSpacer(), toggle))
	a.window.SetContent(container.NewBorder(nil, bottom, nil, nil, surface))

	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			a.drawer.Hide()
		}
	})
}

// boardImage is the raster generator; fyne calls it with the pixel size of
// the board area.
func (a *App) boardImage(w, h int) image.Image {
	l := render.ComputeState(a.ctl.Board().State(), render.Viewport{Width: w, Height: h}, a.th)
	return render.Rasterize(l).Image()
}

// refresh pulls board and capture state into the widgets. It must run on
// the fyne goroutine.
func (a *App) refresh() {
	state := a.ctl.Board().State()
	s := a.ctl.Strings()

	if a.entry.Text != state.CurrentText {
		a.entry.SetText(state.CurrentText)
	}
	a.entry.SetPlaceHolder(s.InputPlaceholder)
	a.header.SetText(s.Title)
	a.buttons["save"].SetText(s.AddShortcut)
	a.buttons["clear"].SetText(s.Clear)
	a.buttons["rotate"].SetText(s.Rotate)
	a.buttons["copy"].SetText(s.Copy)
	a.buttons["speak"].SetText(a.ctl.VoiceLabel())
	if a.ctl.Voice() == panel.VoiceUnsupported {
		a.buttons["speak"].Disable()
	}
	a.voice.SetText(a.ctl.VoiceLabel())
	a.indicator.SetVoice(a.ctl.Voice())

	a.themes.Options = themeLabels(a.ctl)
	a.themes.PlaceHolder = a.ctl.ThemeLabel()
	if i := a.ctl.ThemeIndex(); i >= 0 {
		a.themes.SetSelected(a.ctl.Themes()[i].Label)
	} else {
		a.themes.ClearSelected()
	}
	a.langs.SetSelected(state.Language.Label())

	a.shortcuts = state.ActiveShortcuts()
	a.list.Refresh()

	l := render.ComputeState(state, render.Viewport{Width: 1, Height: 1}, a.th)
	if l.Plain {
		a.plain.Text = state.CurrentText
		a.plain.TextSize = float32(plainBaseSize * l.Bucket.Scale())
		a.plain.Color = rgba(state.TextColor)
		a.plain.Show()
	} else {
		a.plain.Hide()
	}
	a.plain.Refresh()
	a.boardView.Refresh()
}

func (a *App) speak() {
	if err := a.ctl.Speak(a.ctx); err != nil {
		a.status.SetText(err.Error())
	} else {
		a.status.SetText("")
	}
	a.refresh()
}

func (a *App) copyPhrase() {
	if err := a.ctl.CopyPhrase(); err != nil {
		log.Warnf("%v", err)
		a.status.SetText(err.Error())
		return
	}
	a.status.SetText(a.ctl.Strings().Copy + " ✓")
}

func (a *App) watchOutcomes() {
	outcomes := a.ctl.Capture().Outcomes()
	for {
		select {
		case <-a.ctx.Done():
			return
		case o := <-outcomes:
			fyne.Do(func() {
				a.ctl.HandleOutcome(o)
				if o.Err != nil && !errors.Is(o.Err, speech.ErrNoSpeech) {
					a.status.SetText(o.Err.Error())
				} else {
					a.status.SetText("")
				}
				a.refresh()
			})
		}
	}
}

func themeLabels(ctl *panel.Controller) []string {
	labels := make([]string, 0, len(ctl.Themes()))
	for _, th := range ctl.Themes() {
		labels = append(labels, th.Label)
	}
	return labels
}

func langLabels() []string {
	labels := make([]string, 0, len(locale.All))
	for _, l := range locale.All {
		labels = append(labels, l.Label())
	}
	return labels
}

// trayIcon draws a small board glyph for the system tray.
func trayIcon() (fyne.Resource, error) {
	l := render.Compute("T", false, board.Black, board.White, render.Viewport{Width: 22, Height: 22}, render.DefaultThresholds)
	var buf bytes.Buffer
	if err := png.Encode(&buf, render.Rasterize(l).Image()); err != nil {
		return nil, err
	}
	return fyne.NewStaticResource("tray.png", buf.Bytes()), nil
}
