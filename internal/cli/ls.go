package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/internal/bird"
	"github.com/calvinalkan/aviary/pkg/pedigree"
)

const defaultLimit = 100

var (
	errNegativeLimit  = errors.New("--limit must be non-negative")
	errNegativeOffset = errors.New("--offset must be non-negative")
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.String("sex", "", "Filter by sex (male|female|unknown)")
	fs.String("species", "", "Filter by species (case-insensitive)")
	fs.Int("limit", defaultLimit, "Maximum birds to show (0 = all)")
	fs.Int("offset", 0, "Skip first N birds")
	fs.Bool("json", false, "Print JSON instead of columns")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List birds",
		Long:  "List birds sorted by ID (oldest first).",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execLs(ctx, o, a, fs)
		},
	}
}

type birdJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ring    string `json:"ring,omitempty"`
	Sex     string `json:"sex"`
	Species string `json:"species,omitempty"`
	Father  string `json:"father,omitempty"`
	Mother  string `json:"mother,omitempty"`
}

func execLs(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	opts := bird.ListOptions{}

	if fs.Changed("sex") {
		sexFlag, _ := fs.GetString("sex")

		sex, err := pedigree.ParseSex(sexFlag)
		if err != nil {
			return err
		}

		opts.Sex = &sex
	}

	opts.Species, _ = fs.GetString("species")
	opts.Limit, _ = fs.GetInt("limit")
	opts.Offset, _ = fs.GetInt("offset")
	asJSON, _ := fs.GetBool("json")

	if opts.Limit < 0 {
		return errNegativeLimit
	}

	if opts.Offset < 0 {
		return errNegativeOffset
	}

	birds, broken, err := a.store.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("list birds: %w", err)
	}

	warnBroken(o, broken)

	if asJSON {
		out := make([]birdJSON, 0, len(birds))
		for _, b := range birds {
			out = append(out, birdJSON{
				ID: b.ID, Name: b.Name, Ring: b.Ring, Sex: b.Sex.String(),
				Species: b.Species, Father: b.Father, Mother: b.Mother,
			})
		}

		enc := json.NewEncoder(o.Out())
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	rows := make([][]string, 0, len(birds))
	for _, b := range birds {
		rows = append(rows, []string{b.ID, b.Sex.String(), orDash(b.Ring), b.Name})
	}

	for _, line := range formatRows(rows) {
		o.Println(line)
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
