// Package bench is the measurement harness: it runs a fixed corpus of
// source files through all six engines, times each one, and writes
// platform-tagged JSON results the way the reference benchmark does
// (hand-built JSON text, no serialization library, since the shape is
// fixed and small enough not to need one).
package bench

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"bfjit/engine/bytecode1"
	"bfjit/engine/bytecode2"
	"bfjit/engine/bytecode3"
	"bfjit/engine/optjit"
	"bfjit/engine/simplejit"
	"bfjit/engine/treewalk"
)

const numRuns = 10

type runFunc func(source []byte, stdin io.Reader, stdout io.Writer) error

type namedEngine struct {
	name string
	run  runFunc
}

var enginesInOrder = []namedEngine{
	{"treewalk", treewalk.Run},
	{"bytecode1", bytecode1.Run},
	{"bytecode2", bytecode2.Run},
	{"bytecode3", bytecode3.Run},
	{"simplejit", simplejit.Run},
	{"optjit", optjit.Run},
}

// corpusEntry names a corpus/<ShortTitle>.bf file with the input it feeds
// to that program's "," instructions, mirroring the two-program factorize-
// and-render corpus the reference benchmark ships.
type corpusEntry struct {
	ShortTitle string
	Title      string
	Input      string
}

var corpus = []corpusEntry{
	{"mandelbrot", "mandelbrot generator", ""},
	{"factor", "factorization", "179424691\n"},
}

type implResult struct {
	name   string
	millis int64
}

// Run reads every corpus.ShortTitle+".bf" file from corpusDir, benchmarks
// all six engines against it, and writes one JSON file per corpus entry
// into outputDir.
func Run(corpusDir, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	for _, entry := range corpus {
		path := filepath.Join(corpusDir, entry.ShortTitle+".bf")
		fmt.Printf("Measuring file %s...\n", path)

		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if err := measureFile(outputDir, entry, source); err != nil {
			return err
		}
	}

	return nil
}

func measureFile(outputDir string, entry corpusEntry, source []byte) error {
	results := make([]implResult, 0, len(enginesInOrder))
	for _, eng := range enginesInOrder {
		millis, err := benchmark(eng.name, eng.run, source, entry.Input)
		if err != nil {
			return err
		}
		results = append(results, implResult{name: eng.name, millis: millis})
	}

	return writeResults(outputDir, entry, results)
}

func benchmark(name string, run runFunc, source []byte, input string) (int64, error) {
	fmt.Printf("Benchmarking %s...\n", name)

	var total int64
	for i := 0; i < numRuns; i++ {
		stdin := strings.NewReader(input)
		var stdout bytes.Buffer

		start := time.Now()
		if err := run(source, stdin, &stdout); err != nil {
			return 0, err
		}
		total += time.Since(start).Milliseconds()
	}

	result := total / numRuns
	fmt.Printf("Completed in %dms on average over %d runs.\n", result, numRuns)
	return result, nil
}

func platformPrefix() string {
	osName := runtime.GOOS
	if osName == "darwin" {
		osName = "macos"
	}
	archName := runtime.GOARCH
	switch archName {
	case "amd64":
		archName = "x86_64"
	case "386":
		archName = "x86"
	case "arm64":
		archName = "aarch64"
	}
	return osName + "-" + archName
}

func writeResults(outputDir string, entry corpusEntry, results []implResult) error {
	var out strings.Builder
	out.WriteString("{\n")
	fmt.Fprintf(&out, "    \"title\": \"%s (%s)\",\n", entry.Title, strings.Replace(platformPrefix(), "-", " ", 1))
	out.WriteString("    \"data\": [\n")

	for i, r := range results {
		comma := ","
		if i == len(results)-1 {
			comma = ""
		}
		fmt.Fprintf(&out, "        {\"implementation\": %q, \"milliseconds\": %d}%s\n", r.name, r.millis, comma)
	}

	out.WriteString("    ]\n}\n")

	outputPath := filepath.Join(outputDir, platformPrefix()+"-"+entry.ShortTitle+".json")
	if err := os.WriteFile(outputPath, []byte(out.String()), 0o644); err != nil {
		return err
	}
	fmt.Printf("Benchmark data has been saved to %s.\n", outputPath)
	return nil
}
