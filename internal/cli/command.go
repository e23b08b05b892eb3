package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one av subcommand. Help output is generated from its fields.
type Command struct {
	// Flags holds the command-specific flags. The FlagSet name is unused;
	// the command name comes from Usage.
	Flags *flag.FlagSet

	// Usage follows "av" in help, e.g. "show <id>" or "ls [flags]".
	Usage string

	// Short is the one-line description in the command listing.
	Short string

	// Long is shown by "av <cmd> --help". Short is used when empty.
	Long string

	// Exec runs the command with the positional args left after flag parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine returns the line used in the global command listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// PrintHelp prints the full help for "av <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: av", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder

		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses flags and executes the command, printing any error itself so
// output ordering stays consistent. Returns the exit code.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)

			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o.stderr())

		return 1
	}

	execErr := c.Exec(ctx, o, c.Flags.Args())
	if execErr != nil {
		o.ErrPrintln("error:", execErr)

		return 1
	}

	return 0
}
