package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"talkboard/board"
	"talkboard/locale"
	"talkboard/log"
	"talkboard/panel"
)

// runScript drives the board from line commands on in, one per line:
//
//	TEXT <phrase>   CLEAR   ROTATE   SAVE   COPY
//	SHOW <n>        REMOVE <n>        (1-based index into the active list)
//	LANG <code>     THEME <n|next>
//	SPEAK           WAIT              (wait for the speech outcome)
//	SLEEP <ms>      DUMP              (print the state as JSON)
//	QUIT
//
// Problems with a command are reported as "ERR ..." lines and do not stop
// the script.
func runScript(ctx context.Context, ctl *panel.Controller, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		if strings.ToUpper(cmd) == "QUIT" {
			return nil
		}
		if err := scriptCommand(ctx, ctl, strings.ToUpper(cmd), arg, out); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Warnf("script %s: %v", cmd, err)
			fmt.Fprintf(out, "ERR %s: %v\n", cmd, err)
		}
	}
	return scanner.Err()
}

func scriptCommand(ctx context.Context, ctl *panel.Controller, cmd, arg string, out io.Writer) error {
	switch cmd {
	case "TEXT":
		ctl.SetText(arg)
	case "CLEAR":
		ctl.Clear()
	case "ROTATE":
		ctl.Rotate()
	case "SAVE":
		ctl.SaveShortcut()
	case "COPY":
		return ctl.CopyPhrase()
	case "SHOW", "REMOVE":
		sc, err := shortcutAt(ctl, arg)
		if err != nil {
			return err
		}
		if cmd == "SHOW" {
			ctl.ShowShortcut(sc.ID)
		} else {
			ctl.DeleteShortcut(sc.ID)
		}
	case "LANG":
		l, ok := locale.Parse(arg)
		if !ok {
			return fmt.Errorf("%w: %q", board.ErrUnknownLanguage, arg)
		}
		return ctl.SetLanguage(l)
	case "THEME":
		if arg == "next" || arg == "" {
			return ctl.NextTheme()
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("theme index %q: %w", arg, err)
		}
		return ctl.ApplyTheme(n - 1)
	case "SPEAK":
		return ctl.Speak(ctx)
	case "WAIT":
		select {
		case o := <-ctl.Capture().Outcomes():
			ctl.HandleOutcome(o)
			if o.Err != nil {
				fmt.Fprintf(out, "SPEECH ERROR %v\n", o.Err)
			} else {
				fmt.Fprintf(out, "SPEECH %s\n", o.Text)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	case "SLEEP":
		ms, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("sleep %q: %w", arg, err)
		}
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	case "DUMP":
		data, err := board.Encode(ctl.Board().State())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", data)
	default:
		return errors.New("unknown command")
	}
	return nil
}

func shortcutAt(ctl *panel.Controller, arg string) (board.Shortcut, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return board.Shortcut{}, fmt.Errorf("shortcut index %q: %w", arg, err)
	}
	list := ctl.Board().Shortcuts()
	if n < 1 || n > len(list) {
		return board.Shortcut{}, fmt.Errorf("shortcut %d out of range (have %d)", n, len(list))
	}
	return list[n-1], nil
}
