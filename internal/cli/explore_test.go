package cli_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/aviary/internal/cli"
)

func TestExploreNavigates(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	f := newFamily(t, c)

	input := strings.Join([]string{"f", "F", "up", "mother", "", "go mm", "bogus", "top", "depth", "quit", "f"}, "\n")

	stdout, stderr, code := c.RunWithInput(input, "explore", f.child)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}

	want := []string{
		"subject: Filho " + f.child,
		"f (father): Pai " + f.father + " male",
		"ff (father's father): Avô [R-1] " + f.grandfather + " male",
		"f (father): Pai " + f.father + " male",
		"fm (father's mother): Avó Desconhecida (manual, inherited)",
		"mm (mother's mother): Rainha (manual)",
		"unknown command: bogus (type help for commands)",
		"subject: Filho " + f.child,
		"2",
	}

	if diff := cmp.Diff(want, strings.Split(strings.TrimSpace(stdout), "\n")); diff != "" {
		t.Errorf("explore output mismatch (-want +got):\n%s", diff)
	}
}

func TestExploreStopsAtTheCap(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteBird("00000000000X", cycleBirdA)
	c.WriteBird("00000000000Y", cycleBirdB)

	stdout := c.MustRunWithInput("go ffffffffff\nf\nwhere\n", "explore", "00000000000X")

	cli.AssertContains(t, stdout, "ffffffffff (father's father's father's father's father's father's father's father's father's father): Xis 00000000000X")
	cli.AssertContains(t, stdout, "error: cannot go deeper than 10 generations")
}

func TestExploreEndsOnEOF(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := addBird(t, c, "Solo")

	stdout := c.MustRunWithInput("", "explore", id)
	if stdout != "subject: Solo "+id {
		t.Errorf("explore output = %q", stdout)
	}

	cli.AssertContains(t, c.MustFail("explore"), "bird ID is required")
}
