// Package main provides av, a flock and pedigree tracker for bird breeders.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/calvinalkan/aviary/internal/cli"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	code := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, environ(), sigCh)

	signal.Stop(sigCh)
	os.Exit(code)
}

// environ returns the process environment as a map.
func environ() map[string]string {
	vars := os.Environ()
	env := make(map[string]string, len(vars))

	for _, kv := range vars {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	return env
}
