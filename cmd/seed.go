package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/scoutline/scoutline/internal/progress"
	"github.com/scoutline/scoutline/internal/talent"
)

var seedCmd = &cobra.Command{
	Use:   "seed [glob...]",
	Short: "Ingest candidate profiles from JSON files",
	Long: `Reads candidate profiles from JSON files (a single object or an array per
file) and upserts them into the candidate store, embedding and indexing each
profile. Globs support ** via doublestar, e.g. 'profiles/**/*.json'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := expandSeedGlobs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched %v", args)
	}

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	reporter := progress.NewReporter()
	reporter.Start(len(files), "Ingesting candidates")

	total := 0
	for i, file := range files {
		candidates, err := talent.LoadSeedFile(file)
		if err != nil {
			reporter.Finish()
			return fmt.Errorf("reading %s: %w", file, err)
		}
		stored, err := talent.Ingest(ctx, application.store, application.index, candidates)
		if err != nil {
			reporter.Finish()
			return fmt.Errorf("ingesting %s: %w", file, err)
		}
		total += len(stored)
		reporter.Update(i+1, filepath.Base(file))
	}
	reporter.Finish()

	fmt.Fprintf(os.Stderr, "Ingested %d candidates from %d files (%d indexed total)\n",
		total, len(files), application.index.Count())
	return nil
}

// expandSeedGlobs resolves each argument as a doublestar glob, falling back
// to a literal path when the pattern matches nothing but the file exists.
func expandSeedGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr == nil {
				matches = []string{pattern}
			}
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	return files, nil
}
