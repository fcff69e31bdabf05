package cmd

import (
	"os"

	"github.com/crucible-phys/meshshape/log"
	"github.com/urfave/cli"
)

var logger = log.New("meshshape")

func setupLogging(ctx *cli.Context) error {
	return log.SetLevelFromName(ctx.GlobalString("log-level"))
}

// Fatal logs err and exits with a non-zero status, for use by main after
// app.Run returns an error.
func Fatal(err error) {
	logger.Error(err)
	os.Exit(1)
}
