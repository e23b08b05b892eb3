package cli_test

import (
	"testing"

	"github.com/calvinalkan/aviary/internal/bird"
	"github.com/calvinalkan/aviary/internal/cli"
)

// addBird runs "av add" and returns the new ID.
func addBird(t *testing.T, c *cli.CLI, args ...string) string {
	t.Helper()

	id := c.MustRun(append([]string{"add"}, args...)...)
	if !bird.ValidID(id) {
		t.Fatalf("add %v printed %q, not an ID", args, id)
	}

	return id
}

// family is a three-generation fixture:
//
//	child -> father -> grandfather (record, ring R-1)
//	father has a manual mother "Avó Desconhecida"
//	child has a manual mother's mother "Rainha"
type family struct {
	grandfather, father, child string
}

func newFamily(t *testing.T, c *cli.CLI) family {
	t.Helper()

	var f family

	f.grandfather = addBird(t, c, "Avô", "--sex", "male", "--ring", "R-1")
	f.father = addBird(t, c, "Pai", "--sex", "male", "--father", f.grandfather)
	c.MustRun("manual", f.father, "m", "Avó Desconhecida")
	f.child = addBird(t, c, "Filho", "--father", f.father)
	c.MustRun("manual", f.child, "mm", "Rainha")

	return f
}

const cycleBirdA = `---
schema_version: 1
id: 00000000000X
name: Xis
father: 00000000000Y
created: 2026-01-01T00:00:00Z
---
# Xis
`

const cycleBirdB = `---
schema_version: 1
id: 00000000000Y
name: Ipsilon
father: 00000000000X
created: 2026-01-01T00:00:00Z
---
# Ipsilon
`
