package main

import (
	"flag"
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// checkf logs err with its stack and exits when err is non-nil.
func checkf(log zerolog.Logger, err error, format string, args ...any) {
	if err != nil {
		failure(log.Fatal(), err, format, args...)
	}
}

func failure(ev *zerolog.Event, err error, format string, args ...any) {
	ev.Err(err).
		Str("stack", fmt.Sprintf("%+v", errors.WithStack(err))).
		Msgf(format, args...)
}

var errc = color.New(color.BgRed, color.FgWhite).PrintfFunc()

func oerr(fs *flag.FlagSet, msg string) {
	errc("\tERROR: %s ", msg)
	fmt.Println()
	fmt.Println("Flags available:")
	fs.PrintDefaults()
	fmt.Println()
}
