// Tle2json converts a NORAD two-line element set into JSON.
//
// It reads the set from stdin (or --input), decodes it, and writes the record
// to stdout (or --output). With --bulk it accepts a whole catalog of 2- and
// 3-line sets and writes a JSON array. The exit status identifies the kind of
// failure so scripts can branch on it.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/facebookgo/atomicfile"
	"github.com/spf13/pflag"

	"github.com/large-farva/tle2json/internal/tle"
)

const (
	exitOK    = 0
	exitUsage = 1
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	input  string
	output string
	pretty bool
	strict bool
	bulk   bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := pflag.NewFlagSet("tle2json", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.input, "input", "i", "", "Read the element set from this file instead of stdin")
	fs.StringVarP(&opts.output, "output", "o", "", "Write JSON to this file instead of stdout")
	fs.BoolVarP(&opts.pretty, "pretty", "p", false, "Indent the JSON output")
	fs.BoolVar(&opts.strict, "strict", false, "Require line markers and matching catalog numbers")
	fs.BoolVar(&opts.bulk, "bulk", false, "Parse a multi-set catalog into a JSON array")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: tle2json [flags] < set.tle\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "tle2json: unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return exitUsage
	}

	text, err := readAll(opts.input, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "tle2json: %v\n", err)
		return exitUsage
	}

	p := tle.Parser{Strict: opts.strict}

	var out any
	if opts.bulk {
		records, setErrs := p.ParseAll(text)
		for _, se := range setErrs {
			fmt.Fprintf(stderr, "tle2json: %v\n", se)
		}
		if len(records) == 0 && len(setErrs) > 0 {
			return tle.ExitCode(setErrs[0].Err)
		}
		out = records
	} else {
		rec, err := p.Parse(text)
		if err != nil {
			fmt.Fprintf(stderr, "tle2json: %v\n", err)
			return tle.ExitCode(err)
		}
		out = rec
	}

	if err := writeJSON(opts, stdout, out); err != nil {
		fmt.Fprintf(stderr, "tle2json: %v\n", err)
		return exitUsage
	}
	return exitOK
}

func readAll(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeJSON(opts options, stdout io.Writer, v any) error {
	var (
		b   []byte
		err error
	)
	if opts.pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	b = append(b, '\n')

	if opts.output == "" || opts.output == "-" {
		_, err = stdout.Write(b)
		return err
	}
	if err := writeFileAtomic(opts.output, b); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// writeFileAtomic replaces path in one rename so a failed run never leaves a
// partial document behind.
func writeFileAtomic(path string, b []byte) error {
	f, err := atomicfile.New(path, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Abort()
		return err
	}
	return f.Close()
}
