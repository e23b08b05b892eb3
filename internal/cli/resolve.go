package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/internal/bird"
	"github.com/calvinalkan/aviary/pkg/pedigree"
)

// ResolveCmd returns the resolve command.
func ResolveCmd(a *app) *Command {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.Bool("tier", false, "Show which rule produced each value")

	return &Command{
		Flags: fs,
		Usage: "resolve <id> <path>...",
		Short: "Resolve ancestors at paths",
		Long: `Print the ancestor at each path, e.g. "av resolve <id> f fm mmf".
A path is a string of f (father) and m (mother) steps, at most 10 long.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execResolve(ctx, o, a, fs, args)
		},
	}
}

func execResolve(ctx context.Context, o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) < 2 {
		if len(args) == 0 {
			return bird.ErrIDRequired
		}

		return errPathRequired
	}

	paths := make([]pedigree.Path, 0, len(args)-1)

	for _, arg := range args[1:] {
		p, err := parsePathArg(arg)
		if err != nil {
			return err
		}

		paths = append(paths, p)
	}

	showTier, _ := fs.GetBool("tier")

	snap, err := loadFlock(ctx, o, a)
	if err != nil {
		return err
	}

	subject, err := subjectArg(snap, args)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(paths))

	for _, p := range paths {
		anc := snap.Index.Resolve(subject, p)

		row := []string{string(p), describeAncestor(anc)}
		if showTier {
			row = []string{string(p), anc.Tier.String(), describeAncestor(anc)}
		}

		rows = append(rows, row)
	}

	for _, line := range formatRows(rows) {
		o.Println(line)
	}

	return nil
}
