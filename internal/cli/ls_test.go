package cli_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/aviary/internal/cli"
)

func TestLsAlignsColumnsByDisplayWidth(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	a := addBird(t, c, "Ave", "--sex", "male", "--ring", "R-1")
	b := addBird(t, c, "鳥", "--sex", "female", "--ring", "環")

	got := strings.Split(c.MustRun("ls"), "\n")
	want := []string{
		a + "  male    R-1  Ave",
		b + "  female  環   鳥",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ls output mismatch (-want +got):\n%s", diff)
	}
}

func TestLsFilters(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	addBird(t, c, "A", "--sex", "male", "--species", "Serinus canaria")
	b := addBird(t, c, "B", "--sex", "female", "--species", "Serinus canaria")
	addBird(t, c, "C", "--sex", "female")

	stdout := c.MustRun("ls", "--sex", "female", "--species", "serinus canaria")
	if !strings.HasPrefix(stdout, b+"  ") || strings.Contains(stdout, "\n") {
		t.Errorf("filtered ls = %q, want only B", stdout)
	}

	stdout = c.MustRun("ls", "--limit", "1", "--offset", "2")
	if !strings.HasSuffix(stdout, "  C") || strings.Contains(stdout, "\n") {
		t.Errorf("paged ls = %q, want only C", stdout)
	}

	cli.AssertContains(t, c.MustFail("ls", "--limit", "-1"), "--limit must be non-negative")
	cli.AssertContains(t, c.MustFail("ls", "--offset", "3"), "offset out of bounds")
	cli.AssertContains(t, c.MustFail("ls", "--sex", "x"), "invalid sex")
}

func TestLsJSON(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	father := addBird(t, c, "Pai", "--sex", "male")
	child := addBird(t, c, "Filho", "--father", father)

	var got []map[string]string
	if err := json.Unmarshal([]byte(c.MustRun("ls", "--json")), &got); err != nil {
		t.Fatalf("ls --json is not JSON: %v", err)
	}

	want := []map[string]string{
		{"id": father, "name": "Pai", "sex": "male"},
		{"id": child, "name": "Filho", "sex": "unknown", "father": father},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ls --json mismatch (-want +got):\n%s", diff)
	}
}

func TestLsEmptyJSONIsArray(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	if got := c.MustRun("ls", "--json"); got != "[]" {
		t.Errorf("ls --json on empty flock = %q, want []", got)
	}
}

func TestLsWarnsAboutBrokenFiles(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := addBird(t, c, "Bom")
	c.WriteBird("0000000000A1", "---\nschema_version: 1\n")

	stdout, stderr, code := c.Run("ls")

	if code != 1 {
		t.Errorf("exit code = %d, want 1 for warnings", code)
	}

	cli.AssertContains(t, stdout, id)
	cli.AssertContains(t, stderr, "warning:")
	cli.AssertContains(t, stderr, "0000000000A1.md")
	cli.AssertContains(t, stderr, "unclosed frontmatter")
}
