package main

import (
	"context"
	"fmt"

	"github.com/born-ml/qops/internal/onnx/operators"
	"github.com/urfave/cli/v3"
)

func opsCmd() *cli.Command {
	return &cli.Command{
		Name:  "ops",
		Usage: "List supported operators",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, op := range operators.NewRegistry().SupportedOps() {
				if _, err := fmt.Fprintln(cmd.Root().Writer, op); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
