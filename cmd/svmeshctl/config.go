package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/svmesh/svmesh-web/internal/config"
)

func newConfigCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config [file]",
		Short: "Write an example config holding every default",
		Long:  "Write an example config holding every default. The file defaults to config.example.yaml; use - for stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFile := "config.example.yaml"
			if len(args) > 0 {
				outputFile = args[0]
			}
			if format == "" {
				format = "yaml"
				if strings.EqualFold(filepath.Ext(outputFile), ".toml") {
					format = "toml"
				}
			}

			data, err := config.Example(config.Default(), format)
			if err != nil {
				return err
			}

			if outputFile == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outputFile, data, 0o644); err != nil {
				return fmt.Errorf(config.ErrWriteConfigContentFmt, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Generated example config: "+outputFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format, yaml or toml (default from the file extension)")
	return cmd
}
