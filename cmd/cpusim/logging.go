package main

import (
	"io"
	"os"

	gethlog "github.com/ethereum/go-ethereum/log"
	"golang.org/x/term"

	"github.com/ayush-os/cpu-sim/log"
)

// setupLogging installs a terminal log handler writing to w as the default
// logger. A non-empty level name takes precedence over verbosity. Colour is
// used only when w is a terminal.
func setupLogging(w io.Writer, verbosity int, level string) error {
	lvl := log.VerbosityToLevel(verbosity)
	if level != "" {
		var err error
		if lvl, err = log.LevelFromString(level); err != nil {
			return err
		}
	}
	log.SetDefault(log.NewWithHandler(gethlog.NewTerminalHandlerWithLevel(w, lvl, isTerminal(w))))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
