//go:build gui

package gui

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"talkboard/panel"
)

const indicatorSize = 18

var (
	colorPrompt      = color.RGBA{120, 120, 120, 255}
	colorListening   = color.RGBA{230, 40, 40, 255}
	colorError       = color.RGBA{255, 140, 0, 255}
	colorUnsupported = color.RGBA{60, 60, 60, 255}
)

// Indicator is the speech dot next to the voice label. It pulses while
// listening.
type Indicator struct {
	widget.BaseWidget
	mu     sync.Mutex
	frame  int
	voice  panel.Voice
	stopCh chan struct{}
}

func NewIndicator() *Indicator {
	i := &Indicator{stopCh: make(chan struct{})}
	i.ExtendBaseWidget(i)
	go i.animate()
	return i
}

func (i *Indicator) SetVoice(v panel.Voice) {
	i.mu.Lock()
	changed := i.voice != v
	i.voice = v
	i.mu.Unlock()
	if changed {
		i.Refresh()
	}
}

func (i *Indicator) Stop() {
	select {
	case <-i.stopCh:
	default:
		close(i.stopCh)
	}
}

func (i *Indicator) animate() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-i.stopCh:
			return
		case <-ticker.C:
			i.mu.Lock()
			listening := i.voice == panel.VoiceListening
			i.frame++
			i.mu.Unlock()
			if listening {
				fyne.Do(i.Refresh)
			}
		}
	}
}

func (i *Indicator) MinSize() fyne.Size {
	return fyne.NewSize(indicatorSize, indicatorSize)
}

func (i *Indicator) CreateRenderer() fyne.WidgetRenderer {
	return &indicatorRenderer{ind: i, dot: canvas.NewCircle(colorPrompt)}
}

// pulse scales the dot between 0.6 and 1.0 of its box while listening.
func pulse(frame int, v panel.Voice) float32 {
	if v != panel.VoiceListening {
		return 0.7
	}
	return float32(0.8 + 0.2*math.Sin(float64(frame)*0.25))
}

func voiceColor(v panel.Voice) color.Color {
	switch v {
	case panel.VoiceListening:
		return colorListening
	case panel.VoiceError:
		return colorError
	case panel.VoiceUnsupported:
		return colorUnsupported
	}
	return colorPrompt
}

type indicatorRenderer struct {
	ind  *Indicator
	dot  *canvas.Circle
	size fyne.Size
}

func (r *indicatorRenderer) Layout(size fyne.Size) {
	r.size = size
	r.place()
}

func (r *indicatorRenderer) place() {
	r.ind.mu.Lock()
	scale := pulse(r.ind.frame, r.ind.voice)
	r.ind.mu.Unlock()
	d := min(r.size.Width, r.size.Height) * scale
	r.dot.Resize(fyne.NewSize(d, d))
	r.dot.Move(fyne.NewPos((r.size.Width-d)/2, (r.size.Height-d)/2))
}

func (r *indicatorRenderer) MinSize() fyne.Size {
	return r.ind.MinSize()
}

func (r *indicatorRenderer) Refresh() {
	r.ind.mu.Lock()
	v := r.ind.voice
	r.ind.mu.Unlock()
	r.dot.FillColor = voiceColor(v)
	r.place()
	r.dot.Refresh()
}

func (r *indicatorRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.dot}
}

func (r *indicatorRenderer) Destroy() {
	r.ind.Stop()
}
