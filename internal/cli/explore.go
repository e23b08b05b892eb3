package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/pkg/pedigree"
)

// ExploreCmd returns the explore command.
func ExploreCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("explore", flag.ContinueOnError),
		Usage: "explore <id>",
		Short: "Walk the pedigree interactively",
		Long: `Start at a bird and step through its ancestors. Type f or m (or a
longer path like fmf) to move, up to go back, help for all commands.

Reads commands from stdin when it is not a terminal.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execExplore(ctx, o, a, args)
		},
	}
}

var exploreCommands = []string{"father", "mother", "up", "top", "go", "where", "depth", "help", "quit"}

const exploreHelp = `Commands:
  f, m, <path>   move to the father, mother or a relative path (e.g. fm)
  up, ..         move one generation back toward the subject
  top, /         return to the subject
  go <path>      jump to a path from the subject
  where          print the current position
  depth          print how many generations have data
  help, ?        show this help
  quit, q        leave`

// prompter reads one line of input per call.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// linePrompter reads lines from a non-terminal reader. Prompts are not echoed.
type linePrompter struct {
	scanner *bufio.Scanner
}

func (p *linePrompter) Prompt(string) (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return p.scanner.Text(), nil
}

func (*linePrompter) AppendHistory(string) {}

func (*linePrompter) Close() error { return nil }

// newPrompter uses liner when in is the process's terminal stdin.
func newPrompter(in io.Reader) prompter {
	if f, ok := in.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		info, err := f.Stat()
		if err == nil && info.Mode()&os.ModeCharDevice != 0 {
			state := liner.NewLiner()
			state.SetCtrlCAborts(true)
			state.SetCompleter(completeExplore)

			return state
		}
	}

	return &linePrompter{scanner: bufio.NewScanner(in)}
}

func completeExplore(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range exploreCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

var errMaxGeneration = fmt.Errorf("cannot go deeper than %d generations", pedigree.MaxGenerations)

// explorer holds the navigation state of one explore session.
type explorer struct {
	o       *IO
	index   *pedigree.Index
	subject *pedigree.Bird
	at      pedigree.Path // "" is the subject itself
}

func execExplore(ctx context.Context, o *IO, a *app, args []string) error {
	snap, err := loadFlock(ctx, o, a)
	if err != nil {
		return err
	}

	subject, err := subjectArg(snap, args)
	if err != nil {
		return err
	}

	ex := &explorer{o: o, index: snap.Index, subject: subject}
	ex.printCurrent()

	p := newPrompter(a.in)
	defer func() { _ = p.Close() }()

	for ctx.Err() == nil {
		line, promptErr := p.Prompt(ex.prompt())
		if promptErr != nil {
			if errors.Is(promptErr, liner.ErrPromptAborted) || errors.Is(promptErr, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", promptErr)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		p.AppendHistory(line)

		if ex.handle(line) {
			return nil
		}
	}

	return nil
}

func (ex *explorer) prompt() string {
	if ex.at == "" {
		return "av> "
	}

	return "av " + string(ex.at) + "> "
}

// handle runs one command line and reports whether the session should end.
func (ex *explorer) handle(line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "quit", "q", "exit":
		return true
	case "help", "?":
		ex.o.Println(exploreHelp)
	case "up", "..":
		if parent, ok := ex.at.Parent(); ok {
			ex.at = parent
		} else {
			ex.at = ""
		}

		ex.printCurrent()
	case "top", "/":
		ex.at = ""
		ex.printCurrent()
	case "where":
		ex.printCurrent()
	case "depth":
		ex.o.Println(ex.index.MaxDepth(ex.subject))
	case "go":
		if len(fields) < 2 {
			ex.o.Println("error:", errPathRequired)

			return false
		}

		ex.moveTo(fields[1])
	case "father":
		ex.move(string(pedigree.Father.Path()))
	case "mother":
		ex.move(string(pedigree.Mother.Path()))
	default:
		ex.move(cmd)
	}

	return false
}

// move walks rel further from the current position.
func (ex *explorer) move(rel string) {
	if _, err := pedigree.ParsePath(rel); err != nil {
		ex.o.Printf("unknown command: %s (type help for commands)\n", rel)

		return
	}

	ex.moveTo(string(ex.at) + rel)
}

func (ex *explorer) moveTo(target string) {
	if len(target) > pedigree.MaxGenerations {
		ex.o.Println("error:", errMaxGeneration)

		return
	}

	p, err := parsePathArg(target)
	if err != nil {
		ex.o.Println("error:", err)

		return
	}

	ex.at = p
	ex.printCurrent()
}

func (ex *explorer) printCurrent() {
	if ex.at == "" {
		ex.o.Println("subject:", describeSubject(ex.subject))

		return
	}

	anc := ex.index.Resolve(ex.subject, ex.at)
	ex.o.Printf("%s (%s): %s\n", ex.at, ex.at.Label(), describeAncestor(anc))
}
