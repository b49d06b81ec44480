package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogotex/docserve/internal/document/serve"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id> <filename>",
		Short: "Show how a document would be delivered, without serving it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "serve method: %s\n", a.Service.ServeMethod())
			d, err := a.Service.Resolve(cmd.Context(), args[0], args[1])
			if err != nil {
				fmt.Fprintf(out, "outcome: %s (%v)\n", serve.NotFound, err)
				return nil
			}
			switch d.Decision.Outcome {
			case serve.Redirect:
				fmt.Fprintf(out, "outcome: %s -> %s\n", d.Decision.Outcome, d.Decision.URL)
			case serve.LocalServe:
				fmt.Fprintf(out, "outcome: %s %s\n", d.Decision.Outcome, d.LocalPath)
			}
			return nil
		},
	}
}
