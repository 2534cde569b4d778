package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/repository"
)

type importOptions struct {
	backend    string
	sqlitePath string
	force      bool
}

func newImportCmd(root *rootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Copy a content directory into the configured storage backend",
		Long: `Copy updates/*.md and pages/*.md from a content directory into the
storage backend of the site config. Files that fail to parse are skipped
unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if opts.backend != "" {
				cfg.Storage.Backend = opts.backend
			}
			if opts.sqlitePath != "" {
				cfg.Storage.SQLite.Path = opts.sqlitePath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			repo, closeRepo, err := repository.New(ctx, cfg, repository.S3Credentials{
				AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			})
			if err != nil {
				return fmt.Errorf(config.ErrInitializeStorageFmt+": %w", cfg.Storage.Backend, err)
			}
			defer closeRepo()

			writer, ok := repo.(repository.ContentWriter)
			if !ok {
				return fmt.Errorf("storage backend %q cannot store files", cfg.Storage.Backend)
			}

			return importDir(ctx, cmd, args[0], writer, opts.force)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "", "override storage.backend")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite-path", "", "override storage.sqlite.path")
	cmd.Flags().BoolVar(&opts.force, "force", false, "import files that fail to parse")
	return cmd
}

func importDir(ctx context.Context, cmd *cobra.Command, dir string, writer repository.ContentWriter, force bool) error {
	out := cmd.OutOrStdout()
	var imported, skipped int

	for _, category := range []string{config.CategoryUpdates, config.CategoryPages} {
		entries, err := os.ReadDir(filepath.Join(dir, category))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(out, headerStyle.Render(category))
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !repository.ValidName(name) {
				continue
			}

			data, err := os.ReadFile(filepath.Join(dir, category, name))
			if err != nil {
				return err
			}

			if problem := checkFile(category, name, data); problem != nil && !force {
				fmt.Fprintf(out, "  %s %s %s\n", warnStyle.Render("skip"), name, dimStyle.Render(problem.Error()))
				skipped++
				continue
			}

			if err := writer.Save(ctx, category, name, data); err != nil {
				return fmt.Errorf("save %s/%s: %w", category, name, err)
			}
			fmt.Fprintf(out, "  %s %s\n", okStyle.Render("ok"), name)
			imported++
		}
	}

	fmt.Fprintf(out, "\nImported %d file(s), skipped %d.\n", imported, skipped)
	return nil
}
