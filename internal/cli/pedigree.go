package cli

import (
	"context"
	"encoding/json"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/internal/bird"
	"github.com/calvinalkan/aviary/pkg/pedigree"
)

// PedigreeCmd returns the pedigree command.
func PedigreeCmd(a *app) *Command {
	fs := flag.NewFlagSet("pedigree", flag.ContinueOnError)
	fs.IntP("generations", "g", 0, "Generations to show (0 = as deep as data goes, max 10)")
	fs.Bool("json", false, "Print JSON instead of text")

	return &Command{
		Flags: fs,
		Usage: "pedigree <id> [-g N] [--json]",
		Short: "Show the ancestor tree",
		Long: `Resolve the ancestors of a bird. Each slot is filled from the bird record
when one is linked, otherwise from a manual entry on the bird, otherwise from
a manual entry on the nearest recorded ancestor. Empty slots print Undefined.

Without -g the depth comes from the generations config key, or from the
deepest branch that has data when that is 0.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execPedigree(ctx, o, a, fs, args)
		},
	}
}

type ancestorJSON struct {
	Path       string `json:"path"`
	Label      string `json:"label"`
	Provenance string `json:"provenance"`
	Tier       string `json:"tier"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Ring       string `json:"ring,omitempty"`
	Sex        string `json:"sex,omitempty"`
}

type treeJSON struct {
	Subject     birdJSON       `json:"subject"`
	Generations int            `json:"generations"`
	Resolved    int            `json:"resolved"`
	Ancestors   []ancestorJSON `json:"ancestors"`
}

func execPedigree(ctx context.Context, o *IO, a *app, fs *flag.FlagSet, args []string) error {
	generations := a.cfg.Generations
	if fs.Changed("generations") {
		generations, _ = fs.GetInt("generations")
	}

	if generations < 0 || generations > pedigree.MaxGenerations {
		return fmt.Errorf("%w: %d", bird.ErrGenerationsOutOfRange, generations)
	}

	asJSON, _ := fs.GetBool("json")

	snap, err := loadFlock(ctx, o, a)
	if err != nil {
		return err
	}

	subject, err := subjectArg(snap, args)
	if err != nil {
		return err
	}

	tree := snap.Index.Project(subject, generations)

	if asJSON {
		return writeTreeJSON(o, tree)
	}

	writeTreeText(o, tree)

	return nil
}

func writeTreeJSON(o *IO, tree pedigree.Tree) error {
	out := treeJSON{
		Subject: birdJSON{
			ID: tree.Subject.ID, Name: tree.Subject.Name, Ring: tree.Subject.Ring,
			Sex: tree.Subject.Sex.String(), Species: tree.Subject.Species,
			Father: tree.Subject.FatherID, Mother: tree.Subject.MotherID,
		},
		Generations: tree.Generations,
		Resolved:    tree.Resolved(),
		Ancestors:   []ancestorJSON{},
	}

	for gen := 1; gen <= tree.Generations; gen++ {
		for _, slot := range tree.Generation(gen) {
			out.Ancestors = append(out.Ancestors, slotJSON(slot))
		}
	}

	enc := json.NewEncoder(o.Out())
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func slotJSON(slot pedigree.Slot) ancestorJSON {
	anc := slot.Ancestor
	out := ancestorJSON{
		Path:       string(slot.Path),
		Label:      slot.Path.Label(),
		Provenance: anc.Provenance.String(),
		Tier:       anc.Tier.String(),
		ID:         anc.ID,
		Name:       anc.Name,
		Ring:       anc.Ring,
	}

	if anc.Resolved() {
		out.Sex = anc.Sex.String()
	}

	return out
}

func writeTreeText(o *IO, tree pedigree.Tree) {
	o.Println(describeSubject(&tree.Subject))

	if tree.Generations == 0 {
		o.Println("No ancestors recorded.")

		return
	}

	total := len(tree.Ancestors)
	o.Printf("%d generation(s), %d of %d slots resolved\n", tree.Generations, tree.Resolved(), total)

	var rows [][]string

	for gen := 1; gen <= tree.Generations; gen++ {
		for _, slot := range tree.Generation(gen) {
			rows = append(rows, []string{string(slot.Path), slot.Path.Label(), describeAncestor(slot.Ancestor)})
		}
	}

	// One column layout for the whole tree; a generation starts where the
	// path length grows.
	for i, line := range formatRows(rows) {
		if gen := len(rows[i][0]); i == 0 || gen != len(rows[i-1][0]) {
			o.Println()
			o.Printf("Generation %d\n", gen)
		}

		o.Println("  " + line)
	}
}
