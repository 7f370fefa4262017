// ptrid -- offline statistical payload-type classifier.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dantte-lp/ptrid/internal/engine"
	"github.com/dantte-lp/ptrid/internal/offline"
)

var modeFlag string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ptrid <dir_type_1> [dir_type_2 ...]",
		Short: "Classify files against a library of reference payload types",
		Long: "ptrid builds a reference library from the given training directories, " +
			"then reads file paths from stdin, classifying each against the library " +
			"until it reads the literal word \"exit\".",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "MC", "comparison metric: MC, CHI2, or ID")

	return cmd
}

func run(dirs []string, stdin *os.File, stdout *os.File) error {
	metric, err := engine.ParseMetric(modeFlag)
	if err != nil {
		return err
	}

	names := make([]string, len(dirs))
	for i, dir := range dirs {
		names[i] = filepath.Base(filepath.Clean(dir))
	}

	cache := engine.NewFrequencyCache()
	lib, err := engine.BuildReferenceLibrary(metric, dirs, names, cache)
	if err != nil {
		return fmt.Errorf("build reference library: %w", err)
	}

	return classifyLoop(lib, cache, stdin, stdout)
}

// classifyLoop reads file paths from stdin, one per line, classifying each
// regular file against lib until it reads "exit".
func classifyLoop(lib *engine.ReferenceLibrary, cache *engine.FrequencyCache, stdin, stdout *os.File) error {
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		path := scanner.Text()
		if path == "exit" {
			return nil
		}
		if path == "" {
			continue
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		result, err := offline.Classify(path, lib, cache)
		if err != nil {
			fmt.Fprintln(stdout, "Couldn't read the file")
			continue
		}
		fmt.Fprintln(stdout, result.String())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}
