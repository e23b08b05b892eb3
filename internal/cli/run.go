package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/calvinalkan/aviary/internal/bird"
)

const (
	consumedNone = 0
	consumedOne  = 1
	consumedTwo  = 2
	helpFlag     = "--help"
)

// app is what every command closes over.
type app struct {
	cfg   *bird.Config
	store *bird.Store
	in    io.Reader
	log   *zap.Logger
}

func allCommands(a *app) []*Command {
	return []*Command{
		AddCmd(a),
		ShowCmd(a),
		LsCmd(a),
		LinkCmd(a),
		UnlinkCmd(a),
		ManualCmd(a),
		PedigreeCmd(a),
		DepthCmd(a),
		ResolveCmd(a),
		ExploreCmd(a),
		PrintConfigCmd(a),
	}
}

// Run is the main entry point. Returns the exit code. A signal on sigCh
// cancels the command's context.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < 2 {
		printUsage(out, nil)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalFlags(errOut)

		return 1
	}

	if flags.help || len(flags.remaining) == 0 {
		printUsage(out, nil)

		return 0
	}

	if env == nil {
		env = map[string]string{}
	}

	cfg, err := bird.LoadConfig(bird.LoadConfigInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		BirdDirOverride: flags.birdDir,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalFlags(errOut)

		return 1
	}

	log := newLogger(errOut, cfg.LogLevel, flags.verbose)
	defer func() { _ = log.Sync() }()

	if in == nil {
		in = strings.NewReader("")
	}

	a := &app{
		cfg:   &cfg,
		store: bird.NewStore(cfg.BirdDirAbs, log),
		in:    in,
		log:   log,
	}

	commands := allCommands(a)

	name := flags.remaining[0]

	var cmd *Command

	for _, c := range commands {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	log.Debug("running command", zap.String("command", name), zap.String("bird_dir", cfg.BirdDirAbs))

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, flags.remaining[1:])
	finish := o.Finish()

	if code != 0 {
		return code
	}

	return finish
}

// newLogger returns a console logger on w, or a no-op logger when neither
// --verbose nor log_level asks for output.
func newLogger(w io.Writer, level string, verbose bool) *zap.Logger {
	if !verbose && level == "" {
		return zap.NewNop()
	}

	lvl := zapcore.DebugLevel
	if !verbose {
		_ = lvl.UnmarshalText([]byte(level))
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), lvl)

	return zap.New(core)
}

type globalFlags struct {
	workDir    string
	configPath string
	birdDir    string
	verbose    bool
	help       bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if flags.help {
			return flags, nil
		}

		if consumed == consumedNone {
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag parses the global flag at args[idx]. Returns the number of args
// consumed, 0 when args[idx] is not a flag.
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	value, consumed, ok, err := valueFlag(args, idx, "-C", "--cwd")
	if err != nil {
		return consumedNone, err
	}

	if ok {
		flags.workDir = value

		return consumed, nil
	}

	value, consumed, ok, err = valueFlag(args, idx, "-c", "--config")
	if err != nil {
		return consumedNone, err
	}

	if ok {
		flags.configPath = value

		return consumed, nil
	}

	value, consumed, ok, err = valueFlag(args, idx, "", "--bird-dir")
	if err != nil {
		return consumedNone, err
	}

	if ok {
		if value == "" {
			return consumedNone, fmt.Errorf("--bird-dir: %w", bird.ErrBirdDirEmpty)
		}

		flags.birdDir = value

		return consumed, nil
	}

	switch {
	case arg == "-v" || arg == "--verbose":
		flags.verbose = true

		return consumedOne, nil
	case arg == "-h" || arg == helpFlag:
		flags.help = true

		return consumedOne, nil
	case strings.HasPrefix(arg, "-") && arg != "-":
		return consumedNone, fmt.Errorf("%w: %s", bird.ErrUnknownFlag, arg)
	}

	return consumedNone, nil
}

// valueFlag matches "-s value", "-svalue", "--long value" and "--long=value".
func valueFlag(args []string, idx int, short, long string) (string, int, bool, error) {
	arg := args[idx]

	if arg == long || (short != "" && arg == short) {
		if idx+1 >= len(args) {
			return "", consumedNone, false, fmt.Errorf("%w: %s", bird.ErrFlagRequiresArg, arg)
		}

		return args[idx+1], consumedTwo, true, nil
	}

	if after, ok := strings.CutPrefix(arg, long+"="); ok {
		return after, consumedOne, true, nil
	}

	if short != "" {
		if after, ok := strings.CutPrefix(arg, short); ok {
			return after, consumedOne, true, nil
		}
	}

	return "", consumedNone, false, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

const globalFlagsHelp = `Global flags:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
      --bird-dir <dir>   Bird directory (overrides config)
  -v, --verbose          Log debug output to stderr
  -h, --help             Show help`

func printGlobalFlags(w io.Writer) {
	fprintln(w, globalFlagsHelp)
}

func printUsage(w io.Writer, commands []*Command) {
	if commands == nil {
		commands = allCommands(&app{cfg: &bird.Config{}})
	}

	fprintln(w, `av - aviary pedigree tracker

Usage: av [flags] <command> [args]`)
	fprintln(w)
	printGlobalFlags(w)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}
