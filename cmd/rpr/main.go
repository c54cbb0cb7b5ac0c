// rpr - row pattern recognition engine
//
// Reads a CSV stream of rows and reports every match of a MATCH_RECOGNIZE
// style PATTERN clause against it. Uses manual argument parsing, in the
// style of uawk's own CLI, rather than a flags/subcommand library.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/coregx/rpr"
	"github.com/coregx/rpr/emit"
	"github.com/coregx/rpr/ingest"
	"github.com/coregx/rpr/nfaexec"
)

const usage = `usage: rpr -pattern 'PATTERN' [-skip past-last|to-next] [-output one-row|all-rows] [file]

Reads CSV from file, or stdin if file is omitted. The CSV header must
include a "vars" column (comma-separated true-variable names per row) or
a "text" column (free text scanned for variable-name occurrences).

  -pattern PATTERN   row pattern clause, e.g. 'A B+ C'
  -skip MODE         past-last (default) or to-next
  -output MODE       one-row (default) or all-rows
  -h, -help          show this help message
`

func main() {
	var patternSrc string
	var skipMode = "past-last"
	var outputMode = "one-row"
	var inputFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-pattern":
			i++
			if i >= len(args) {
				errorExitf("flag needs an argument: -pattern")
			}
			patternSrc = args[i]
		case "-skip":
			i++
			if i >= len(args) {
				errorExitf("flag needs an argument: -skip")
			}
			skipMode = args[i]
		case "-output":
			i++
			if i >= len(args) {
				errorExitf("flag needs an argument: -output")
			}
			outputMode = args[i]
		case "-h", "-help", "--help":
			fmt.Print(usage)
			os.Exit(0)
		default:
			if strings.HasPrefix(arg, "-") {
				errorExitf("flag provided but not defined: %s", arg)
			}
			if inputFile != "" {
				errorExitf("only one input file may be given")
			}
			inputFile = arg
		}
	}

	if patternSrc == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := parseConfig(skipMode, outputMode)
	if err != nil {
		errorExit(err)
	}

	engine, err := rpr.Compile(patternSrc, cfg)
	if err != nil {
		errorExitf("compiling pattern %q: %v", patternSrc, err)
	}

	input := os.Stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			errorExitf("cannot open file %s: %v", inputFile, err)
		}
		defer f.Close()
		input = f
	}

	src, err := ingest.NewCSVRowSource(input, engine.Pattern())
	if err != nil {
		errorExit(err)
	}

	for {
		row, ok, err := src.Next()
		if err != nil {
			errorExit(err)
		}
		if !ok {
			break
		}
		emissions, err := engine.ProcessRow(row.Index, row.Vars)
		if err != nil {
			errorExitf("row %d: %v", row.Index, err)
		}
		for _, em := range emissions {
			printEmission(engine, em)
		}
	}
}

func printEmission(engine *rpr.Engine, em emit.Emission) {
	for _, path := range em.Paths {
		names := engine.Names(path)
		fmt.Printf("match[%d,%d] ctx=%d: %s\n", em.MatchStart, em.MatchEnd, em.ContextID, strings.Join(names, " "))
	}
}

func parseConfig(skipMode, outputMode string) (rpr.Config, error) {
	cfg := rpr.DefaultConfig()
	switch strings.ToLower(skipMode) {
	case "past-last", "":
		cfg.SkipMode = nfaexec.SkipPastLast
	case "to-next":
		cfg.SkipMode = nfaexec.SkipToNext
	default:
		return cfg, fmt.Errorf("unknown -skip mode %q (want past-last or to-next)", skipMode)
	}
	switch strings.ToLower(outputMode) {
	case "one-row", "":
		cfg.OutputMode = nfaexec.OutputOneRow
	case "all-rows":
		cfg.OutputMode = nfaexec.OutputAllRows
	default:
		return cfg, fmt.Errorf("unknown -output mode %q (want one-row or all-rows)", outputMode)
	}
	return cfg, nil
}

func errorExitf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "rpr: "+format+"\n", a...)
	os.Exit(1)
}

func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "rpr: %v\n", err)
	os.Exit(1)
}
