package pedigree

import (
	"errors"
	"fmt"
	"strings"
)

// Step is one move from a bird to one of its parents.
type Step byte

// Steps.
const (
	Father Step = 'f'
	Mother Step = 'm'
)

// Path returns the single-step path for s.
func (s Step) Path() Path {
	return Path(rune(s))
}

func (s Step) String() string {
	if s == Father {
		return "father"
	}

	return "mother"
}

// ErrInvalidPath is returned by [ParsePath] for malformed paths.
var ErrInvalidPath = errors.New("invalid ancestor path")

// Path addresses one lineage slot relative to a subject bird. It is read left
// to right as steps away from the subject: "ffm" is the father's father's
// mother. Valid paths have 1 to [MaxGenerations] steps over {f, m}.
type Path string

// ParsePath validates s as a path.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	if len(s) > MaxGenerations {
		return "", fmt.Errorf("%w: %q is deeper than %d generations", ErrInvalidPath, s, MaxGenerations)
	}

	for i := range len(s) {
		if s[i] != byte(Father) && s[i] != byte(Mother) {
			return "", fmt.Errorf("%w: %q (only f and m allowed)", ErrInvalidPath, s)
		}
	}

	return Path(s), nil
}

// MustPath is like [ParsePath] but panics on error.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}

	return p
}

// Valid reports whether p would be accepted by [ParsePath].
func (p Path) Valid() bool {
	_, err := ParsePath(string(p))

	return err == nil
}

// Generation is the number of steps, 1 for parents, 2 for grandparents.
func (p Path) Generation() int {
	return len(p)
}

// Parent drops the last step. It returns false for single-step paths.
func (p Path) Parent() (Path, bool) {
	if len(p) <= 1 {
		return "", false
	}

	return p[:len(p)-1], true
}

// Last returns the final step.
func (p Path) Last() Step {
	return Step(p[len(p)-1])
}

// Steps returns the steps from the subject outwards.
func (p Path) Steps() []Step {
	steps := make([]Step, len(p))
	for i := range len(p) {
		steps[i] = Step(p[i])
	}

	return steps
}

// Child extends p by one step.
func (p Path) Child(s Step) Path {
	return p + s.Path()
}

// Label spells the path out, e.g. "father's father's mother".
func (p Path) Label() string {
	var builder strings.Builder

	for i, step := range p.Steps() {
		if i > 0 {
			builder.WriteString("'s ")
		}

		builder.WriteString(step.String())
	}

	return builder.String()
}

// PathsAt returns all 2^gen paths of generation gen, fathers first.
// Generations outside 1..MaxGenerations yield nil.
func PathsAt(gen int) []Path {
	if gen < 1 || gen > MaxGenerations {
		return nil
	}

	paths := []Path{""}

	for range gen {
		next := make([]Path, 0, len(paths)*2)
		for _, p := range paths {
			next = append(next, p.Child(Father), p.Child(Mother))
		}

		paths = next
	}

	return paths
}

// PathsUpTo returns every path of generations 1 through depth, in generation
// order.
func PathsUpTo(depth int) []Path {
	depth = min(depth, MaxGenerations)

	var paths []Path
	for gen := 1; gen <= depth; gen++ {
		paths = append(paths, PathsAt(gen)...)
	}

	return paths
}

// mustBeResolvable panics for paths the resolvers must never see.
func mustBeResolvable(p Path) {
	if !p.Valid() {
		panic(fmt.Sprintf("pedigree: resolving invalid path %q", string(p)))
	}
}
