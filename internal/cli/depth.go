package cli

import (
	"context"
	"strconv"

	flag "github.com/spf13/pflag"
)

// DepthCmd returns the depth command.
func DepthCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("depth", flag.ContinueOnError),
		Usage: "depth <id>",
		Short: "Print how many generations have data",
		Long:  "Print the deepest generation (0-10) reached by any branch with a record or manual entry.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			snap, err := loadFlock(ctx, o, a)
			if err != nil {
				return err
			}

			subject, err := subjectArg(snap, args)
			if err != nil {
				return err
			}

			o.Println(strconv.Itoa(snap.Index.MaxDepth(subject)))

			return nil
		},
	}
}
