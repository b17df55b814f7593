// Command hostval parses a JSON, JSONC or YAML document into host values and
// prints them as a tree, as JSON or as CBOR diagnostic notation.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/interchange"
	"github.com/wippyai/hostserde/serde"
	"github.com/wippyai/hostserde/transcoder"
)

type options struct {
	input         string
	format        string
	output        string
	interactive   bool
	normalize     bool
	mapsAsObjects bool
	bigInts       bool
	verbose       bool
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("hostval", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opts.format, "format", "f", "", "input format: json, jsonc or yaml (default: from the file extension)")
	flags.StringVarP(&opts.output, "output", "o", "tree", "output: tree, json or cbor")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "browse the value in a terminal UI")
	flags.BoolVar(&opts.normalize, "normalize", false, "decode the value and encode it again before printing")
	flags.BoolVar(&opts.mapsAsObjects, "maps-as-objects", false, "with --normalize, encode maps as plain objects")
	flags.BoolVar(&opts.bigInts, "bigint", false, "with --normalize, encode 64-bit integers as bigints")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log conversion details to stderr")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: hostval [flags] [file]")
		fmt.Fprintln(stderr, "       hostval -i config.yaml  (interactive mode)")
		fmt.Fprintln(stderr)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			flags.Usage()
		}
		return opts, err
	}

	switch flags.NArg() {
	case 0:
	case 1:
		opts.input = flags.Arg(0)
	default:
		flags.Usage()
		return opts, fmt.Errorf("expected at most one input file, got %d", flags.NArg())
	}
	return opts, nil
}

func run(opts options, stdout *os.File) error {
	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		host.SetLogger(logger.Named("host"))
		serde.SetLogger(logger.Named("serde"))
		transcoder.SetLogger(logger.Named("transcoder"))
	}

	data, format, err := readInput(opts)
	if err != nil {
		return err
	}

	value, err := interchange.Parse(format, data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", format, err)
	}

	if opts.normalize {
		cfg := transcoder.DefaultConfig().
			WithMapsAsObjects(opts.mapsAsObjects).
			WithLargeIntsAsBigInt(opts.bigInts)
		if value, err = normalize(value, cfg); err != nil {
			return err
		}
	}

	if opts.interactive {
		return runInteractive(displayName(opts.input), value)
	}

	pal := plain
	if term.IsTerminal(int(stdout.Fd())) {
		pal = colors
	}
	return write(stdout, opts.output, value, pal)
}

func readInput(opts options) ([]byte, interchange.Format, error) {
	var (
		data []byte
		err  error
	)
	if opts.input == "" || opts.input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(opts.input)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}

	format := interchange.FormatFromPath(opts.input)
	if opts.format != "" {
		format = interchange.Format(strings.ToLower(opts.format))
	}
	return data, format, nil
}

// normalize decodes v into a format-independent buffer and encodes it
// again with cfg.
func normalize(v host.Value, cfg transcoder.Config) (host.Value, error) {
	content, err := serde.CaptureContent(transcoder.NewDecoder().Deserializer(v))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	out, err := transcoder.NewEncoder(cfg).Encode(&content)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out, nil
}

func write(w io.Writer, output string, v host.Value, pal palette) error {
	switch output {
	case "tree":
		return writeTree(w, buildTree(v), pal)
	case "json":
		text, defined, err := host.Stringify(v)
		if err != nil {
			return err
		}
		if !defined {
			text = "undefined"
		}
		_, err = fmt.Fprintln(w, text)
		return err
	case "cbor":
		data, err := interchange.MarshalCBOR(v)
		if err != nil {
			return err
		}
		diag, err := interchange.DiagnoseCBOR(data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, diag)
		return err
	}
	return fmt.Errorf("unknown output %q (want tree, json or cbor)", output)
}

func displayName(input string) string {
	if input == "" || input == "-" {
		return "stdin"
	}
	return input
}
