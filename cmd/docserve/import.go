package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogotex/docserve/internal/document/handler"
	"github.com/gogotex/docserve/internal/importer"
)

func importCmd() *cobra.Command {
	var opts importer.Options
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Upload every file under a directory as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			res, err := importer.Run(cmd.Context(), a.Service, args[0], opts)
			if res != nil {
				for _, d := range res.Imported {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.ID, handler.ServeURL(d))
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "imported %d, skipped %d\n", len(res.Imported), len(res.Skipped))
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", 4, "parallel uploads")
	cmd.Flags().BoolVar(&opts.IncludeHidden, "hidden", false, "include dotfiles and dot-directories")
	return cmd
}
