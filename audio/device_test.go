package audio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPickerStep(t *testing.T) {
	for _, tt := range []struct {
		name       string
		cursor, n  int
		key        string
		wantCursor int
		wantAction pickerAction
	}{
		{"down arrow", 0, 3, "\x1b[B", 1, pickerMove},
		{"up arrow", 2, 3, "\x1b[A", 1, pickerMove},
		{"j", 1, 3, "j", 2, pickerMove},
		{"k at top stays", 0, 3, "k", 0, pickerMove},
		{"down at bottom stays", 2, 3, "\x1b[B", 2, pickerMove},
		{"enter", 1, 3, "\r", 1, pickerConfirm},
		{"newline", 2, 3, "\n", 2, pickerConfirm},
		{"ctrl+c", 1, 3, "\x03", 1, pickerCancel},
		{"q", 0, 3, "q", 0, pickerCancel},
		{"escape", 0, 3, "\x1b", 0, pickerCancel},
		{"other key", 1, 3, "x", 1, pickerMove},
		{"right arrow ignored", 1, 3, "\x1b[C", 1, pickerMove},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cursor, action := pickerStep(tt.cursor, tt.n, []byte(tt.key))
			if cursor != tt.wantCursor || action != tt.wantAction {
				t.Errorf("pickerStep(%d, %d, %q) = %d, %v; want %d, %v",
					tt.cursor, tt.n, tt.key, cursor, action, tt.wantCursor, tt.wantAction)
			}
		})
	}
}

var pickerDevices = []DeviceInfo{
	{ID: "a", Name: "Built-in Microphone"},
	{ID: "b", Name: "AirPods Pro"},
	{ID: "c", Name: "USB Headset"},
}

func TestPreferredIndex(t *testing.T) {
	for _, tt := range []struct {
		preferred string
		want      int
	}{
		{"", 0},
		{"USB Headset", 2},
		{"b", 1},
		{"gone", 0},
	} {
		if got := preferredIndex(pickerDevices, tt.preferred); got != tt.want {
			t.Errorf("preferredIndex(%q) = %d, want %d", tt.preferred, got, tt.want)
		}
	}
}

// keys hands out one key per Read, the way a raw terminal does.
type keys []string

func (k *keys) Read(p []byte) (int, error) {
	if len(*k) == 0 {
		return 0, errors.New("no more input")
	}
	n := copy(p, (*k)[0])
	*k = (*k)[1:]
	return n, nil
}

func TestPickDevice(t *testing.T) {
	in := &keys{"\x1b[B", "j", "\x1b[A", "\r"}
	var out bytes.Buffer
	d, err := pickDevice(in, &out, pickerDevices, 0)
	if err != nil {
		t.Fatalf("pickDevice: %v", err)
	}
	if d.ID != "b" {
		t.Errorf("picked %q, want b", d.ID)
	}
	if !strings.Contains(out.String(), "bluetooth") {
		t.Error("bluetooth device not flagged in the list")
	}
}

func TestPickDeviceStartsOnPreferred(t *testing.T) {
	in := &keys{"\r"}
	d, err := pickDevice(in, &bytes.Buffer{}, pickerDevices, preferredIndex(pickerDevices, "USB Headset"))
	if err != nil {
		t.Fatalf("pickDevice: %v", err)
	}
	if d.ID != "c" {
		t.Errorf("picked %q, want c", d.ID)
	}
}

func TestPickDeviceCancel(t *testing.T) {
	in := &keys{"j", "\x03"}
	_, err := pickDevice(in, &bytes.Buffer{}, pickerDevices, 0)
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Fatalf("err = %v, want ErrSelectionCancelled", err)
	}
}

func TestSelectDeviceSingleSkipsPrompt(t *testing.T) {
	d, err := SelectDevice(NewFakeContext(nil, false), "")
	if err != nil {
		t.Fatalf("SelectDevice: %v", err)
	}
	if d.ID != "fake" {
		t.Errorf("ID = %q, want fake", d.ID)
	}
}
