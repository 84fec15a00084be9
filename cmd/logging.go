package cmd

import (
	"fmt"
	"strings"

	"github.com/achilleasa/bvhtrace/log"
	"github.com/urfave/cli"
)

var logger = log.New("bvhtrace")

// Apply the global verbosity flags. Per-module overrides have the form
// module=level and take precedence over -v/-vv.
func setupLogging(ctx *cli.Context) error {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	for _, override := range ctx.GlobalStringSlice("log-level") {
		tokens := strings.SplitN(override, "=", 2)
		if len(tokens) != 2 || tokens[0] == "" {
			return fmt.Errorf("invalid log level override %q; expected module=level", override)
		}

		level, err := log.ParseLevel(tokens[1])
		if err != nil {
			return err
		}
		log.SetModuleLevel(tokens[0], level)
	}

	return nil
}
