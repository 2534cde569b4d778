package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/frontmatter"
	"github.com/spf13/cobra"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/content"
	"github.com/svmesh/svmesh-web/internal/repository"
)

func newCheckCmd() *cobra.Command {
	var strictYAML bool

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Parse every content file the way the site does and report problems",
		Long: `Parse updates/*.md and pages/*.md with the same parsers the site uses.
Malformed files fail the check. Updates whose date cannot be parsed are
reported as warnings since they sort last. With --yaml, frontmatter blocks
that are not valid YAML are reported as warnings too.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "content"
			if len(args) > 0 {
				dir = args[0]
			}

			report, err := checkDir(dir, strictYAML)
			if err != nil {
				return err
			}
			report.print(cmd)

			if report.failed > 0 {
				return fmt.Errorf("%d malformed file(s)", report.failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strictYAML, "yaml", false, "also warn about frontmatter that is not valid YAML")
	return cmd
}

type checkResult struct {
	path     string
	err      error
	warnings []string
}

type checkReport struct {
	results []checkResult
	failed  int
	warned  int
}

func checkDir(dir string, strictYAML bool) (*checkReport, error) {
	report := &checkReport{}

	for _, category := range []string{config.CategoryUpdates, config.CategoryPages} {
		entries, err := os.ReadDir(filepath.Join(dir, category))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !repository.ValidName(name) {
				continue
			}

			data, err := os.ReadFile(filepath.Join(dir, category, name))
			if err != nil {
				return nil, err
			}

			res := checkResult{path: category + "/" + name}
			res.err = checkFile(category, name, data)
			if res.err == nil {
				res.warnings = fileWarnings(category, name, data, strictYAML)
			}

			switch {
			case res.err != nil:
				report.failed++
			case len(res.warnings) > 0:
				report.warned++
			}
			report.results = append(report.results, res)
		}
	}

	return report, nil
}

// checkFile parses data with the parser the site uses for category.
func checkFile(category, name string, data []byte) error {
	if category == config.CategoryUpdates {
		_, err := content.ParseUpdate(string(data), content.SlugFromFilename(name))
		return err
	}
	_, err := content.ParsePage(string(data))
	return err
}

func fileWarnings(category, name string, data []byte, strictYAML bool) []string {
	var warnings []string

	if category == config.CategoryUpdates {
		post, err := content.ParseUpdate(string(data), content.SlugFromFilename(name))
		if err == nil {
			if post.Metadata.Title == "" {
				warnings = append(warnings, "missing title")
			}
			if _, ok := content.ParseDate(post.Metadata.Date); !ok {
				warnings = append(warnings, fmt.Sprintf("date %q cannot be parsed, the update sorts last", post.Metadata.Date))
			}
		}
	}

	if strictYAML {
		var meta map[string]any
		if _, err := frontmatter.Parse(bytes.NewReader(data), &meta); err != nil {
			warnings = append(warnings, "frontmatter is not valid YAML: "+err.Error())
		}
	}

	return warnings
}

func (r *checkReport) print(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	for _, res := range r.results {
		switch {
		case res.err != nil:
			fmt.Fprintf(out, "%s %s %s\n", errStyle.Render("FAIL"), res.path, dimStyle.Render(res.err.Error()))
		case len(res.warnings) > 0:
			fmt.Fprintf(out, "%s %s\n", warnStyle.Render("WARN"), res.path)
			for _, w := range res.warnings {
				fmt.Fprintf(out, "     %s\n", dimStyle.Render(w))
			}
		default:
			fmt.Fprintf(out, "%s %s\n", okStyle.Render("ok  "), res.path)
		}
	}
	fmt.Fprintf(out, "\n%s\n", headerStyle.Render(fmt.Sprintf("%d file(s), %d malformed, %d with warnings", len(r.results), r.failed, r.warned)))
}
