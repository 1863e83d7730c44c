// Command waveguide is the command-line entry point for the Waveguide
// language: it lowers and runs source files, dumps their lowered IR,
// or starts the interactive REPL.
//
// The subcommand shape (run/lower/repl/version) gives each mode its own
// argument list and help text instead of one flat set of flags.
package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/waveguide-lang/waveguide/internal/interpreter"
	"github.com/waveguide-lang/waveguide/internal/lower"
	"github.com/waveguide-lang/waveguide/parser"
	"github.com/waveguide-lang/waveguide/repl"
)

const version = "0.1.0"

var (
	debugFlag   bool
	noColorFlag bool
)

func main() {
	root := &cobra.Command{
		Use:   "waveguide",
		Short: "Waveguide compiles and runs Waveguide source programs",
		Long: `Waveguide is a small imperative, array-oriented language.
Without a subcommand, waveguide starts an interactive REPL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL()
		},
	}
	root.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "enable verbose debug output")
	root.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored REPL output")

	root.AddCommand(newRunCmd())
	root.AddCommand(newLowerCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Lower and execute a Waveguide source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0])
		},
	}
}

func newLowerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lower <file>",
		Short: "Lower a Waveguide source file and print its IR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return lowerFile(args[0])
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive REPL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the waveguide version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("waveguide v%s\n", version)
		},
	}
}

func readSource(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(content), nil
}

func runFile(path string) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	prog, errs := parser.Parse(src)
	if len(errs) != 0 {
		return parseErrors(errs)
	}

	root, err := lower.Lower(prog)
	if err != nil {
		return fmt.Errorf("lowering %s: %w", path, err)
	}

	root, err = interpreter.Run(root)
	if err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}

	if debugFlag {
		main, ok := root.LookupFunc("main", false)
		if ok {
			fmt.Println(main.Repr())
		}
	}
	return nil
}

func lowerFile(path string) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	prog, errs := parser.Parse(src)
	if len(errs) != 0 {
		return parseErrors(errs)
	}

	root, err := lower.Lower(prog)
	if err != nil {
		return fmt.Errorf("lowering %s: %w", path, err)
	}

	fmt.Println(root.Repr())
	return nil
}

func runREPL() error {
	username := "unknown"
	if usr, err := user.Current(); err == nil {
		username = usr.Username
	}
	repl.Start(username, repl.Options{NoColor: noColorFlag, Debug: debugFlag})
	return nil
}

func parseErrors(errs []string) error {
	msg := "parse errors:"
	for _, e := range errs {
		msg += "\n\t" + e
	}
	return fmt.Errorf("%s", msg)
}
