// Command binflate extracts the original executable from a compressed binary
// without running it.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/meigma/binpress"
)

const version = "0.4.0"

const usage = `Usage: binflate <compressed_binary> [-o|--output <path>]

Extract the original executable from a compressed binary without running it.

Options:
  -o, --output <path>   where to write the extracted binary
  -h, --help            show this help
  -v, --version         show version
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "binflate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("binflate", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	output := flags.StringP("output", "o", "", "")
	help := flags.BoolP("help", "h", false, "")
	showVersion := flags.BoolP("version", "v", false, "")

	if err := flags.Parse(args); err != nil {
		return err
	}
	switch {
	case *help:
		fmt.Print(usage)
		return nil
	case *showVersion:
		fmt.Println("binflate " + version)
		return nil
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("expected exactly one compressed binary")
	}
	input := flags.Arg(0)

	out := *output
	if out == "" {
		out = defaultOutput(input)
	}
	if _, err := os.Stat(out); err == nil {
		if !confirmOverwrite(out) {
			return fmt.Errorf("not overwriting %s", out)
		}
	}

	info, err := binpress.Extract(input, out)
	if err != nil {
		if errors.Is(err, binpress.ErrNotCompressed) {
			return fmt.Errorf("%s is not a compressed binary", input)
		}
		return err
	}

	fmt.Printf("extracted %s -> %s (%d bytes, %s)\n",
		input, info.OutputPath, info.Header.UncompressedSize, info.Codec)
	return nil
}

// defaultOutput strips the conventional compressed-name suffixes; when the
// input name carries neither, ".out" is appended so the original is never
// clobbered by default.
func defaultOutput(input string) string {
	if s, ok := strings.CutSuffix(input, "-compressed"); ok {
		return s
	}
	if s, ok := strings.CutSuffix(input, ".compressed"); ok {
		return s
	}
	return input + ".out"
}

func confirmOverwrite(path string) bool {
	fmt.Printf("overwrite %s? [y/N] ", path)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
