package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var ErrSelectionCancelled = errors.New("device selection cancelled")

type pickerAction int

const (
	pickerMove pickerAction = iota
	pickerConfirm
	pickerCancel
)

// pickerStep applies one key read from a raw terminal to the cursor.
func pickerStep(cursor, n int, key []byte) (int, pickerAction) {
	switch {
	case len(key) == 1:
		switch key[0] {
		case '\r', '\n':
			return cursor, pickerConfirm
		case 3, 'q', 0x1b: // ctrl+c, q, bare escape
			return cursor, pickerCancel
		case 'j':
			cursor++
		case 'k':
			cursor--
		}
	case len(key) == 3 && key[0] == 0x1b && key[1] == '[':
		switch key[2] {
		case 'A':
			cursor--
		case 'B':
			cursor++
		}
	}
	return max(0, min(cursor, n-1)), pickerMove
}

func preferredIndex(devices []DeviceInfo, preferred string) int {
	if preferred == "" {
		return 0
	}
	for i, d := range devices {
		if d.Name == preferred || d.ID == preferred {
			return i
		}
	}
	return 0
}

func renderPicker(w io.Writer, devices []DeviceInfo, cursor int) {
	fmt.Fprint(w, "\r\x1b[J")
	fmt.Fprint(w, "Microphone for the speak button (↑/↓ or j/k, Enter to confirm, q to skip):\r\n\r\n")
	for i, d := range devices {
		tag := ""
		if IsBluetooth(d.Name) {
			tag = " \x1b[33m[bluetooth, lower quality]\x1b[0m"
		}
		if i == cursor {
			fmt.Fprintf(w, "  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, tag)
		} else {
			fmt.Fprintf(w, "    %s%s\r\n", d.Name, tag)
		}
	}
}

// SelectDevice lets the user pick a capture device on the terminal, with
// the cursor starting on preferred when it names a known device. A single
// device is returned without prompting.
func SelectDevice(ctx Context, preferred string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("no capture devices found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return pickDevice(os.Stdin, os.Stdout, devices, preferredIndex(devices, preferred))
}

func pickDevice(in io.Reader, out io.Writer, devices []DeviceInfo, cursor int) (*DeviceInfo, error) {
	renderPicker(out, devices, cursor)
	buf := make([]byte, 3)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		var action pickerAction
		cursor, action = pickerStep(cursor, len(devices), buf[:n])
		switch action {
		case pickerConfirm:
			fmt.Fprint(out, "\r\n")
			return &devices[cursor], nil
		case pickerCancel:
			fmt.Fprint(out, "\r\n")
			return nil, ErrSelectionCancelled
		}
		fmt.Fprintf(out, "\x1b[%dA", len(devices)+2)
		renderPicker(out, devices, cursor)
	}
}
