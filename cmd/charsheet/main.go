// Package main is the charsheet command: it generates one character
// interactively and serves its sheet on a local HTTP endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/charsheet/internal/game/prompt"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitAborted = 130
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and maps the outcome to an exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCmd(in, out, errOut)
	root.SetArgs(args)
	return exitCode(root.ExecuteContext(ctx), errOut)
}

func exitCode(err error, errOut io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, prompt.ErrAborted):
		fmt.Fprintln(errOut, "Aborted.")
		return exitAborted
	default:
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return exitFailure
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:   "charsheet",
		Short: "Generate a fifth-edition character and serve its sheet",
		Long: `charsheet builds one character from the rule catalog, asking for every
choice the race, class, background, and level call for, and serves the
finished sheet as HTML on a local port until interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return generate(cmd, configPath, in, out)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	pf.String("catalog", "", "directory of catalog YAML files (default: built-in catalog)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: json, console")

	f := root.Flags()
	f.String("race", "Human", "race id")
	f.String("subrace", "", "subrace id (prompted when the race has subraces)")
	f.String("sex", "Female", "Female or Male")
	f.String("background", "", "background id (default: the class default)")
	f.String("alignment", "True Neutral", "one of the nine alignments")
	f.String("klass", "Fighter", "class id")
	f.String("subclass", "", "subclass id (prompted from level 3)")
	f.Int("level", 1, "character level, 1-20")
	f.Int("threshold", 65, "minimum sum of the rolled ability scores")
	f.Bool("roll-hp", false, "roll hit points above level 1 instead of taking the average")
	f.Bool("random", false, "make every choice at random without prompting")
	f.Uint64("seed", 0, "seed for reproducible rolls and random choices (0: unseeded)")
	f.String("host", "127.0.0.1", "sheet listen host")
	f.Int("port", 5000, "sheet listen port")
	f.Bool("trace", false, "export OpenTelemetry traces over OTLP/HTTP")

	root.AddCommand(newListCmd(&configPath))
	return root
}
