package cli

import (
	"context"
	"errors"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/internal/bird"
)

var (
	errManualNameRequired = errors.New("manual ancestor name is required (or pass --clear)")
	errClearWithName      = errors.New("--clear cannot be combined with a name")
)

// ManualCmd returns the manual command.
func ManualCmd(a *app) *Command {
	fs := flag.NewFlagSet("manual", flag.ContinueOnError)
	fs.Bool("clear", false, "Remove the manual entry at path")

	return &Command{
		Flags: fs,
		Usage: "manual <id> <path> [name]",
		Short: "Set or clear a manual ancestor",
		Long: `Record a free-text ancestor name at a path relative to the bird, e.g.
"fm" for the father's mother. Manual names fill slots that have no bird
record; a record always takes precedence.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execManual(o, a, fs, args)
		},
	}
}

func execManual(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return bird.ErrIDRequired
	}

	if len(args) < 2 {
		return errPathRequired
	}

	p, err := parsePathArg(args[1])
	if err != nil {
		return err
	}

	clearEntry, _ := fs.GetBool("clear")
	name := strings.TrimSpace(strings.Join(args[2:], " "))

	switch {
	case clearEntry && name != "":
		return errClearWithName
	case !clearEntry && name == "":
		return errManualNameRequired
	}

	updated, err := a.store.Update(bird.NormalizeID(args[0]), func(b *bird.Bird) error {
		b.SetManual(p, name)

		return nil
	})
	if err != nil {
		return err
	}

	if clearEntry {
		o.Println("Cleared", string(p), "on", updated.ID)
	} else {
		o.Println("Set", string(p), "("+p.Label()+") on", updated.ID, "to", name)
	}

	return nil
}
