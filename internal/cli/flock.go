package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/calvinalkan/aviary/internal/bird"
	"github.com/calvinalkan/aviary/pkg/pedigree"
)

const undefinedAncestor = "Undefined"

var errPathRequired = errors.New("path is required")

// loadFlock snapshots the bird directory. Files that fail to parse become
// warnings and are left out of the index.
func loadFlock(ctx context.Context, o *IO, a *app) (*bird.Snapshot, error) {
	snap, err := a.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading flock: %w", err)
	}

	warnBroken(o, snap.Broken)

	return snap, nil
}

func warnBroken(o *IO, broken []bird.Result) {
	for _, r := range broken {
		o.Warn(fmt.Sprintf("%s: %v", r.Path, r.Err), "fix the bird file or delete it if invalid")
	}
}

// subjectArg looks up the bird named by the first positional argument.
func subjectArg(snap *bird.Snapshot, args []string) (*pedigree.Bird, error) {
	if len(args) == 0 {
		return nil, bird.ErrIDRequired
	}

	id := bird.NormalizeID(args[0])
	if id == "" {
		return nil, bird.ErrIDRequired
	}

	return snap.Subject(id)
}

func parsePathArg(s string) (pedigree.Path, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", errPathRequired
	}

	return pedigree.ParsePath(s)
}

// describeAncestor renders one resolved slot on a single line.
func describeAncestor(anc pedigree.Ancestor) string {
	if !anc.Resolved() {
		return undefinedAncestor
	}

	var b strings.Builder

	b.WriteString(anc.Name)

	if anc.Ring != "" {
		b.WriteString(" [" + anc.Ring + "]")
	}

	switch anc.Tier {
	case pedigree.TierSystem:
		b.WriteString(" " + anc.ID)

		if anc.Sex != pedigree.SexUnknown {
			b.WriteString(" " + anc.Sex.String())
		}
	case pedigree.TierManualExact:
		b.WriteString(" (manual)")
	case pedigree.TierManualInherited:
		b.WriteString(" (manual, inherited)")
	case pedigree.TierNone:
	}

	return b.String()
}

func describeSubject(b *pedigree.Bird) string {
	return describeAncestor(pedigree.Ancestor{
		ID: b.ID, Name: b.Name, Ring: b.Ring, Sex: b.Sex,
		Provenance: pedigree.System, Tier: pedigree.TierSystem,
	})
}

// padRight pads s with spaces to width display columns.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// columnWidths returns the display width of the widest cell in each column.
func columnWidths(rows [][]string) []int {
	var widths []int

	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}

			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	return widths
}

// formatRows aligns rows into columns separated by two spaces. The last
// column is never padded.
func formatRows(rows [][]string) []string {
	widths := columnWidths(rows)
	lines := make([]string, 0, len(rows))

	for _, row := range rows {
		var b strings.Builder

		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)

				break
			}

			b.WriteString(padRight(cell, widths[i]))
			b.WriteString("  ")
		}

		lines = append(lines, strings.TrimRight(b.String(), " "))
	}

	return lines
}
