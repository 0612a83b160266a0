package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/imposter-project/imposter-expect/internal/config"
	"github.com/spf13/cobra"
)

// findInitFiles returns the YAML and JSON files under dir
func findInitFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".json":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// validateInitFiles decodes and validates each init file under dir, reporting
// one line per file to out. It returns the number of valid and invalid files.
func validateInitFiles(dir string, out io.Writer) (valid int, invalid int, err error) {
	files, err := findInitFiles(dir)
	if err != nil {
		return 0, 0, err
	}
	for _, file := range files {
		expectations, err := config.LoadInitFile(file)
		if err != nil {
			fmt.Fprintf(out, "✗ %s - Invalid:\n\t - %v\n", file, err)
			invalid++
			continue
		}
		fmt.Fprintf(out, "✓ %s - Valid (%d expectation(s))\n", file, len(expectations))
		valid++
	}
	return valid, invalid, nil
}

func newCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:          "validate_configs",
		Short:        "Validates expectation init files",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Validating init files")
			valid, invalid, err := validateInitFiles(dir, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Successfully validated %d files.\n", valid)
			if invalid > 0 {
				return fmt.Errorf("%d invalid file(s)", invalid)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "configs", "c", "", "Directory containing init files")
	_ = cmd.MarkFlagRequired("configs")
	return cmd
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
