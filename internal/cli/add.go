package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/internal/bird"
	"github.com/calvinalkan/aviary/pkg/pedigree"
)

var errEmptyValue = errors.New("empty value not allowed")

// AddCmd returns the add command.
func AddCmd(a *app) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.StringP("ring", "r", "", "Ring number")
	fs.StringP("sex", "s", "", "Sex (male|female|unknown)")
	fs.String("species", "", "Species")
	fs.String("father", "", "Father bird ID")
	fs.String("mother", "", "Mother bird ID")
	fs.StringP("notes", "n", "", "Free-form notes")

	return &Command{
		Flags: fs,
		Usage: "add <name> [flags]",
		Short: "Add a bird, prints ID",
		Long:  "Add a bird to the flock. Parents must already exist. Prints the new bird's ID.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execAdd(o, a, fs, args)
		},
	}
}

func execAdd(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return bird.ErrNameRequired
	}

	for _, name := range []string{"ring", "species", "father", "mother"} {
		value, _ := fs.GetString(name)
		if fs.Changed(name) && strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: --%s", errEmptyValue, name)
		}
	}

	sexFlag, _ := fs.GetString("sex")

	sex, err := pedigree.ParseSex(sexFlag)
	if err != nil {
		return err
	}

	ring, _ := fs.GetString("ring")
	species, _ := fs.GetString("species")
	father, _ := fs.GetString("father")
	mother, _ := fs.GetString("mother")
	notes, _ := fs.GetString("notes")

	b := &bird.Bird{
		Name:    strings.TrimSpace(args[0]),
		Ring:    strings.TrimSpace(ring),
		Sex:     sex,
		Species: strings.TrimSpace(species),
		Father:  bird.NormalizeID(father),
		Mother:  bird.NormalizeID(mother),
		Notes:   strings.TrimSpace(notes),
	}

	createErr := a.store.Create(b)
	if createErr != nil {
		return createErr
	}

	o.Println(b.ID)

	return nil
}
