// Package pedigree reconstructs ancestor trees for a bird from a snapshot of
// flock records.
//
// Ancestors are addressed by [Path] values relative to a subject bird. Real
// records linked through father/mother IDs take precedence over free-text
// manual ancestors the breeder typed in for lineage outside the flock.
//
// Everything in this package is a pure function of its inputs. An [Index] is
// built once per snapshot and may be shared between goroutines.
package pedigree

import (
	"errors"
	"fmt"
	"strings"
)

// MaxGenerations is the depth cap. No path longer than this is ever resolved,
// which keeps cyclic parent references from recursing forever.
const MaxGenerations = 10

// Sex of a bird.
type Sex uint8

// Sex values. The zero value is SexUnknown.
const (
	SexUnknown Sex = iota
	SexMale
	SexFemale
)

var errInvalidSex = errors.New("invalid sex (valid: male, female, unknown)")

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	default:
		return "unknown"
	}
}

// ParseSex parses "male", "female", "unknown" or their first letter.
// An empty string is SexUnknown.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "u", "unknown":
		return SexUnknown, nil
	case "m", "male":
		return SexMale, nil
	case "f", "female":
		return SexFemale, nil
	default:
		return SexUnknown, fmt.Errorf("%w: %q", errInvalidSex, s)
	}
}

// Bird is the engine's view of a flock record.
type Bird struct {
	ID      string
	Name    string
	Ring    string
	Species string
	Sex     Sex

	// FatherID and MotherID reference other birds by ID. Empty means unknown.
	FatherID string
	MotherID string

	// ManualAncestors names ancestors that have no record, keyed by path
	// relative to this bird.
	ManualAncestors map[Path]string
}

// parentID returns the father or mother reference for step.
func (b *Bird) parentID(step Step) string {
	if step == Father {
		return b.FatherID
	}

	return b.MotherID
}

// manual returns the trimmed manual ancestor name stored at p.
func (b *Bird) manual(p Path) (string, bool) {
	name := strings.TrimSpace(b.ManualAncestors[p])

	return name, name != ""
}

// Provenance says where a resolved ancestor came from.
type Provenance uint8

const (
	// Unresolved means no tier produced data. It is the zero value.
	Unresolved Provenance = iota
	// System means the ancestor is a real record in the flock.
	System
	// Manual means the ancestor is a free-text name typed by the user.
	Manual
)

func (p Provenance) String() string {
	switch p {
	case System:
		return "system"
	case Manual:
		return "manual"
	default:
		return "unresolved"
	}
}

// Tier identifies the fallback rule that produced an [Ancestor].
type Tier uint8

const (
	TierNone Tier = iota
	TierSystem
	TierManualExact
	TierManualInherited
)

func (t Tier) String() string {
	switch t {
	case TierSystem:
		return "system"
	case TierManualExact:
		return "manual-exact"
	case TierManualInherited:
		return "manual-inherited"
	default:
		return "none"
	}
}

// Ancestor is a displayable ancestor. The zero value is unresolved.
type Ancestor struct {
	// ID is set only for System ancestors.
	ID         string
	Name       string
	Ring       string
	Sex        Sex
	Provenance Provenance
	Tier       Tier
}

// Resolved reports whether any tier produced data.
func (a Ancestor) Resolved() bool {
	return a.Provenance != Unresolved
}
