// Package bird stores flock records as markdown files with YAML frontmatter,
// one file per bird, and loads them into pedigree snapshots.
package bird

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/aviary/pkg/pedigree"
)

// MaxFrontmatterLines is the maximum number of lines allowed in frontmatter.
// If the closing delimiter is not found within this limit, parsing fails.
const MaxFrontmatterLines = 200

// Bird is a stored flock record.
type Bird struct {
	SchemaVersion int
	ID            string
	Name          string
	Ring          string
	Sex           pedigree.Sex
	Species       string
	Father        string
	Mother        string

	// ManualAncestors maps a path relative to this bird to a free-text name.
	ManualAncestors map[pedigree.Path]string

	Created time.Time
	Notes   string

	// Path is the file the bird was read from. Not serialized.
	Path string
}

// Pedigree returns the engine view of b.
func (b *Bird) Pedigree() pedigree.Bird {
	return pedigree.Bird{
		ID:              b.ID,
		Name:            b.Name,
		Ring:            b.Ring,
		Species:         b.Species,
		Sex:             b.Sex,
		FatherID:        b.Father,
		MotherID:        b.Mother,
		ManualAncestors: b.ManualAncestors,
	}
}

// SetParent sets the father or mother reference. An empty id clears it.
func (b *Bird) SetParent(step pedigree.Step, id string) error {
	if id != "" && id == b.ID {
		return ErrSelfParent
	}

	if step == pedigree.Father {
		b.Father = id
	} else {
		b.Mother = id
	}

	return nil
}

// SetManual records name as the manual ancestor at p. An empty name removes
// the entry.
func (b *Bird) SetManual(p pedigree.Path, name string) {
	name = strings.TrimSpace(name)

	if name == "" {
		delete(b.ManualAncestors, p)

		if len(b.ManualAncestors) == 0 {
			b.ManualAncestors = nil
		}

		return
	}

	if b.ManualAncestors == nil {
		b.ManualAncestors = make(map[pedigree.Path]string)
	}

	b.ManualAncestors[p] = name
}

// ManualPaths returns the manual ancestor paths in generation order.
func (b *Bird) ManualPaths() []pedigree.Path {
	paths := make([]pedigree.Path, 0, len(b.ManualAncestors))
	for p := range b.ManualAncestors {
		paths = append(paths, p)
	}

	slices.SortFunc(paths, func(x, y pedigree.Path) int {
		if len(x) != len(y) {
			return len(x) - len(y)
		}

		return strings.Compare(string(x), string(y))
	})

	return paths
}

// frontmatter is the on-disk YAML header. Field order is the write order.
type frontmatter struct {
	SchemaVersion   int               `yaml:"schema_version"`
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	Ring            string            `yaml:"ring,omitempty"`
	Sex             string            `yaml:"sex"`
	Species         string            `yaml:"species,omitempty"`
	Father          string            `yaml:"father,omitempty"`
	Mother          string            `yaml:"mother,omitempty"`
	ManualAncestors map[string]string `yaml:"manual-ancestors,omitempty"`
	Created         time.Time         `yaml:"created"`
}

// Format renders b as markdown with YAML frontmatter.
func Format(b *Bird) (string, error) {
	header := frontmatter{
		SchemaVersion: b.SchemaVersion,
		ID:            b.ID,
		Name:          b.Name,
		Ring:          b.Ring,
		Sex:           b.Sex.String(),
		Species:       b.Species,
		Father:        b.Father,
		Mother:        b.Mother,
		Created:       b.Created.UTC().Truncate(time.Second),
	}

	if len(b.ManualAncestors) > 0 {
		header.ManualAncestors = make(map[string]string, len(b.ManualAncestors))
		for p, name := range b.ManualAncestors {
			header.ManualAncestors[string(p)] = name
		}
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err := enc.Encode(header)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	var builder strings.Builder

	builder.WriteString(frontmatterDelimiter + "\n")
	builder.Write(buf.Bytes())
	builder.WriteString(frontmatterDelimiter + "\n")
	builder.WriteString("# " + b.Name + "\n")

	if notes := strings.TrimSpace(b.Notes); notes != "" {
		builder.WriteString("\n" + notes + "\n")
	}

	return builder.String(), nil
}

// Parse reads a bird file. The frontmatter is validated; the body is kept as
// notes with the leading "# name" heading removed.
func Parse(content []byte) (*Bird, error) {
	header, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	var fm frontmatter

	dec := yaml.NewDecoder(bytes.NewReader(header))
	dec.KnownFields(true)

	decodeErr := dec.Decode(&fm)
	if decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFieldValue, decodeErr)
	}

	return fromFrontmatter(&fm, body)
}

func fromFrontmatter(fm *frontmatter, body []byte) (*Bird, error) {
	if fm.SchemaVersion == 0 {
		return nil, ErrMissingSchemaVersion
	}

	if fm.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchemaVersion, fm.SchemaVersion)
	}

	if fm.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingField)
	}

	for _, ref := range [...]struct{ field, id string }{{"id", fm.ID}, {"father", fm.Father}, {"mother", fm.Mother}} {
		if ref.id != "" && !ValidID(ref.id) {
			return nil, fmt.Errorf("%w: %s: %w %q", ErrInvalidFieldValue, ref.field, ErrInvalidID, ref.id)
		}
	}

	if strings.TrimSpace(fm.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	if fm.Created.IsZero() {
		return nil, fmt.Errorf("%w: created", ErrMissingField)
	}

	sex, err := pedigree.ParseSex(fm.Sex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFieldValue, err)
	}

	b := &Bird{
		SchemaVersion: fm.SchemaVersion,
		ID:            fm.ID,
		Name:          fm.Name,
		Ring:          fm.Ring,
		Sex:           sex,
		Species:       fm.Species,
		Father:        fm.Father,
		Mother:        fm.Mother,
		Created:       fm.Created.UTC(),
		Notes:         notesFromBody(body),
	}

	for key, name := range fm.ManualAncestors {
		p, pathErr := pedigree.ParsePath(key)
		if pathErr != nil {
			return nil, fmt.Errorf("%w: manual-ancestors: %w", ErrInvalidFieldValue, pathErr)
		}

		b.SetManual(p, name)
	}

	return b, nil
}

// splitFrontmatter returns the YAML between the delimiters and the rest.
func splitFrontmatter(content []byte) ([]byte, []byte, error) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 4096), len(content)+1)

	if !scanner.Scan() || strings.TrimRight(scanner.Text(), "\r") != frontmatterDelimiter {
		return nil, nil, ErrNoFrontmatter
	}

	offset := len(scanner.Bytes()) + 1

	var header bytes.Buffer

	for lines := 0; scanner.Scan(); lines++ {
		if lines >= MaxFrontmatterLines {
			return nil, nil, ErrFrontmatterTooLong
		}

		line := scanner.Bytes()
		offset += len(line) + 1

		if strings.TrimRight(string(line), "\r") == frontmatterDelimiter {
			return header.Bytes(), content[min(offset, len(content)):], nil
		}

		header.Write(line)
		header.WriteByte('\n')
	}

	return nil, nil, ErrUnclosedFrontmatter
}

// notesFromBody drops the title heading and surrounding blank lines.
func notesFromBody(body []byte) string {
	text := strings.TrimSpace(string(body))

	if strings.HasPrefix(text, "# ") {
		_, rest, _ := strings.Cut(text, "\n")
		text = strings.TrimSpace(rest)
	}

	return text
}
