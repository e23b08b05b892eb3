package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/aviary/internal/bird"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execPrintConfig(o, a.cfg)
		},
	}
}

func execPrintConfig(o *IO, cfg *bird.Config) error {
	formatted, err := bird.FormatConfig(*cfg)
	if err != nil {
		return err
	}

	o.Println(formatted)
	o.Println()
	o.Println("effective_cwd=" + cfg.EffectiveCwd)
	o.Println("bird_dir=" + cfg.BirdDirAbs)
	o.Println()
	o.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("(defaults only)")

		return nil
	}

	if cfg.Sources.Global != "" {
		o.Println("global_config=" + cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("project_config=" + cfg.Sources.Project)
	}

	return nil
}
