// Package main provides the qops CLI, which runs quantized operator
// conformance cases.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.1.0-dev"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	opts := &options{}
	return &cli.Command{
		Name:      "qops",
		Usage:     "Quantized ONNX operator kernels",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags(opts),
		Before:    opts.before,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			runCmd(opts),
			opsCmd(),
			versionCmd(),
		},
	}
}
