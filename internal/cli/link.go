package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/internal/bird"
	"github.com/calvinalkan/aviary/pkg/pedigree"
)

var (
	errNothingToLink   = errors.New("nothing to link: pass --father and/or --mother")
	errNothingToUnlink = errors.New("nothing to unlink: pass --father and/or --mother")
)

// LinkCmd returns the link command.
func LinkCmd(a *app) *Command {
	fs := flag.NewFlagSet("link", flag.ContinueOnError)
	fs.String("father", "", "Father bird ID")
	fs.String("mother", "", "Mother bird ID")

	return &Command{
		Flags: fs,
		Usage: "link <id> [--father X] [--mother Y]",
		Short: "Set parent references",
		Long:  "Point a bird at its father and/or mother. Parents must exist and differ from the bird.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execLink(o, a, fs, args)
		},
	}
}

func execLink(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return bird.ErrIDRequired
	}

	id := bird.NormalizeID(args[0])

	parents := map[pedigree.Step]string{}

	for _, step := range []pedigree.Step{pedigree.Father, pedigree.Mother} {
		if !fs.Changed(step.String()) {
			continue
		}

		value, _ := fs.GetString(step.String())

		parentID := bird.NormalizeID(value)
		if parentID == "" {
			return fmt.Errorf("%w: --%s", errEmptyValue, step)
		}

		if parentID != id && !a.store.Exists(parentID) {
			return fmt.Errorf("%w: %s", bird.ErrParentNotFound, parentID)
		}

		parents[step] = parentID
	}

	if len(parents) == 0 {
		return errNothingToLink
	}

	updated, err := a.store.Update(id, func(b *bird.Bird) error {
		for _, step := range []pedigree.Step{pedigree.Father, pedigree.Mother} {
			parentID, ok := parents[step]
			if !ok {
				continue
			}

			setErr := b.SetParent(step, parentID)
			if setErr != nil {
				return setErr
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	o.Println("Linked", updated.ID, parentSummary(updated))

	return nil
}

// UnlinkCmd returns the unlink command.
func UnlinkCmd(a *app) *Command {
	fs := flag.NewFlagSet("unlink", flag.ContinueOnError)
	fs.Bool("father", false, "Clear the father reference")
	fs.Bool("mother", false, "Clear the mother reference")

	return &Command{
		Flags: fs,
		Usage: "unlink <id> [--father] [--mother]",
		Short: "Clear parent references",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execUnlink(o, a, fs, args)
		},
	}
}

func execUnlink(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return bird.ErrIDRequired
	}

	father, _ := fs.GetBool("father")
	mother, _ := fs.GetBool("mother")

	if !father && !mother {
		return errNothingToUnlink
	}

	updated, err := a.store.Update(bird.NormalizeID(args[0]), func(b *bird.Bird) error {
		if father {
			b.Father = ""
		}

		if mother {
			b.Mother = ""
		}

		return nil
	})
	if err != nil {
		return err
	}

	o.Println("Unlinked", updated.ID, parentSummary(updated))

	return nil
}

func parentSummary(b *bird.Bird) string {
	return fmt.Sprintf("(father: %s, mother: %s)", orDash(b.Father), orDash(b.Mother))
}
