package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/qops/internal/conformance"
	"github.com/born-ml/qops/internal/logger"
	"github.com/born-ml/qops/internal/onnx/operators"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

func runCmd(opts *options) *cli.Command {
	var (
		builtin bool
		format  string
	)

	return &cli.Command{
		Name:      "run",
		Usage:     "Run conformance cases from YAML files or directories",
		ArgsUsage: "[case files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "builtin",
				Usage:       "include the built-in operator cases",
				Destination: &builtin,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "report format (text, json)",
				Value:       "text",
				Sources:     cli.EnvVars("QOPS_FORMAT"),
				Destination: &format,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyRunConfig(cmd, opts.cfg, &format)
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown report format %q (want text or json)", format)
			}

			cases, err := collectCases(cmd.Args().Slice(), builtin)
			if err != nil {
				return err
			}

			log := opts.log
			if log == nil {
				log = logger.FromContext(ctx)
			}
			runner := &conformance.Runner{
				Registry: operators.NewRegistry(),
				Context:  &operators.Context{Parallel: opts.parallel(), Log: log},
				Log:      log,
			}
			log.Info("running cases", "count", len(cases))

			report, err := runner.RunAll(ctx, cases)
			if err != nil {
				return fmt.Errorf("run interrupted: %w", err)
			}

			w := cmd.Root().Writer
			if format == "json" {
				err = writeJSON(w, report)
			} else {
				err = writeText(w, report)
			}
			if err != nil {
				return err
			}

			if !report.OK() {
				return fmt.Errorf("%d of %d cases failed", report.Failed, len(report.Results))
			}
			return nil
		},
	}
}

// collectCases loads every path (files, or *.yaml inside directories) and
// optionally the built-in cases.
func collectCases(paths []string, builtin bool) ([]conformance.Case, error) {
	if len(paths) == 0 && !builtin {
		return nil, errors.New("no case files given (pass files or --builtin)")
	}

	var cases []conformance.Case
	if builtin {
		loaded, err := conformance.Builtin()
		if err != nil {
			return nil, fmt.Errorf("load builtin cases: %w", err)
		}
		cases = append(cases, loaded...)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		var loaded []conformance.Case
		if info.IsDir() {
			loaded, err = conformance.LoadFS(os.DirFS(path), "*.yaml")
			if err != nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
		} else {
			loaded, err = conformance.LoadFile(path)
		}
		if err != nil {
			return nil, err
		}
		cases = append(cases, loaded...)
	}
	return cases, nil
}

func writeText(w io.Writer, report conformance.Report) error {
	for _, res := range report.Results {
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		if _, err := fmt.Fprintf(w, "%s  %-40s %s\n", status, res.Case, res.Op); err != nil {
			return err
		}
		if res.Error != "" {
			if _, err := fmt.Fprintf(w, "      error: %s\n", res.Error); err != nil {
				return err
			}
		}
		for _, m := range res.Mismatches {
			if _, err := fmt.Fprintf(w, "      %s\n", m); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed\n", report.Passed, report.Failed)
	return err
}

func writeJSON(w io.Writer, report conformance.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
