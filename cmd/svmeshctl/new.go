package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/spf13/cobra"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/content"
)

const dateLayout = "2006-01-02"

type newOptions struct {
	dir   string
	force bool
	now   func() time.Time
}

func newNewCmd() *cobra.Command {
	opts := &newOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Scaffold a content file",
	}
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "content", "content directory")
	cmd.PersistentFlags().BoolVar(&opts.force, "force", false, "overwrite an existing file")

	cmd.AddCommand(newUpdateCmd(opts), newPageCmd(opts))
	return cmd
}

func newUpdateCmd(opts *newOptions) *cobra.Command {
	var meta content.UpdateMetadata

	cmd := &cobra.Command{
		Use:   "update <title>",
		Short: "Scaffold a date-prefixed update post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta.Title = args[0]
			if meta.Date == "" {
				meta.Date = opts.now().Format(dateLayout)
			}
			date, ok := content.ParseDate(meta.Date)
			if !ok {
				return fmt.Errorf("invalid date %q", meta.Date)
			}

			s, err := slug.Normalize(meta.Title)
			if err != nil || s == "" {
				return fmt.Errorf("cannot derive a file name from title %q", meta.Title)
			}

			block, err := content.FormatFrontmatter(meta.Fields()...)
			if err != nil {
				return err
			}

			name := date.Format(dateLayout) + "-" + s + config.MarkdownExt
			return writeScaffold(cmd, opts, config.CategoryUpdates, name, block+"\nWrite the update here.\n")
		},
	}

	cmd.Flags().StringVar(&meta.Date, "date", "", "publication date (default today)")
	cmd.Flags().StringVar(&meta.Summary, "summary", "", "one-line summary")
	cmd.Flags().StringVar(&meta.Tag, "tag", "", "tag shown on the update card")
	return cmd
}

func newPageCmd(opts *newOptions) *cobra.Command {
	var title, subtitle string

	cmd := &cobra.Command{
		Use:   "page <name>",
		Short: "Scaffold a page served at /<name>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := slug.Normalize(args[0])
			if err != nil || name == "" || !content.ValidPageName(name) {
				return fmt.Errorf("invalid page name %q", args[0])
			}

			fields := []content.Field{{Key: "title", Value: title}}
			if subtitle != "" {
				fields = append(fields, content.Field{Key: "subtitle", Value: subtitle})
			}
			block, err := content.FormatFrontmatter(fields...)
			if err != nil {
				return err
			}

			return writeScaffold(cmd, opts, config.CategoryPages, name+config.MarkdownExt, block+"\nWrite the page here.\n")
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "page title")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "page subtitle")
	return cmd
}

func writeScaffold(cmd *cobra.Command, opts *newOptions, category, name, body string) error {
	dir := filepath.Join(opts.dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(body); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Created "+path))
	return nil
}
