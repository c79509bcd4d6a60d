package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/urfave/cli/v2"

	"bfjit/bench"
	"bfjit/engine/bytecode1"
	"bfjit/engine/bytecode2"
	"bfjit/engine/bytecode3"
	"bfjit/engine/optjit"
	"bfjit/engine/simplejit"
	"bfjit/engine/treewalk"
)

type runFunc func(source []byte, stdin io.Reader, stdout io.Writer) error

// runWithGCDisabled mirrors this codebase's own tight-loop discipline: the
// tape and program are allocated up front, so the only thing the garbage
// collector could interrupt is the execution loop itself.
func runWithGCDisabled(run func() error) error {
	key, ok := os.LookupEnv("GOGC")
	gcPercent := 100
	if ok {
		if v, err := strconv.Atoi(key); err == nil {
			gcPercent = v
		}
	}

	debug.SetGCPercent(-1)
	defer debug.SetGCPercent(gcPercent)

	return run()
}

func engineCommand(name string, run runFunc) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     fmt.Sprintf("run a program with the %s engine", name),
		ArgsUsage: "<path-to-source>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one source file argument", 2)
			}
			source, err := os.ReadFile(c.Args().Get(0))
			if err != nil {
				return cli.Exit(err, 1)
			}

			err = runWithGCDisabled(func() error {
				return run(source, os.Stdin, os.Stdout)
			})
			if err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}

func main() {
	app := &cli.App{
		Name:  "bf",
		Usage: "run and benchmark the six execution engines against a Brainfuck-family source file",
		Commands: []*cli.Command{
			engineCommand("treewalk", treewalk.Run),
			engineCommand("bytecode1", bytecode1.Run),
			engineCommand("bytecode2", bytecode2.Run),
			engineCommand("bytecode3", bytecode3.Run),
			engineCommand("simplejit", simplejit.Run),
			engineCommand("optjit", optjit.Run),
			{
				Name:      "bench",
				Usage:     "run the timing harness against a corpus directory and write platform-tagged JSON results",
				ArgsUsage: "<corpus-dir> <output-dir>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected <corpus-dir> <output-dir>", 2)
					}
					if err := bench.Run(c.Args().Get(0), c.Args().Get(1)); err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
