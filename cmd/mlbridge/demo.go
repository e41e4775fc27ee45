package main

import (
	"fmt"
	"strconv"

	"github.com/danmuck/mlbridge/internal/scenario"
	"github.com/spf13/cobra"
)

func newDemoCmd(flags *globalFlags) *cobra.Command {
	demo := &cobra.Command{
		Use:   "demo",
		Short: "Run a call scenario against the runtime",
	}

	demo.AddCommand(&cobra.Command{
		Use:   "twice N",
		Short: "Double N on the foreign side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("twice: %q is not an integer", args[0])
			}
			cr, err := flags.startRuntime(cmd)
			if err != nil {
				return err
			}
			out, err := scenario.Twice(cr, n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	})

	demo.AddCommand(&cobra.Command{
		Use:   "increment-bytes S N",
		Short: "Increment the first N bytes of S on the foreign side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("increment-bytes: %q is not an integer", args[1])
			}
			cr, err := flags.startRuntime(cmd)
			if err != nil {
				return err
			}
			out, err := scenario.IncrementBytes(cr, args[0], n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	})
	return demo
}
