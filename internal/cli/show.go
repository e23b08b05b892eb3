package cli

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/internal/bird"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <id>",
		Short: "Show bird details",
		Long:  "Print the bird file. Fails if the file does not parse.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execShow(o, a, args)
		},
	}
}

func execShow(o *IO, a *app, args []string) error {
	if len(args) == 0 {
		return bird.ErrIDRequired
	}

	b, err := a.store.Load(bird.NormalizeID(args[0]))
	if err != nil {
		return err
	}

	content, err := os.ReadFile(b.Path)
	if err != nil {
		return fmt.Errorf("reading bird: %w", err)
	}

	o.Printf("%s", content)

	return nil
}
