// Command binpress compresses an executable into a self-extracting stub or a
// raw container file.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/meigma/binpress"
	"github.com/meigma/binpress/target"
)

const version = "0.4.0"

const usage = `Usage: binpress <input> [options]

Compress an executable into a self-extracting stub and/or a raw container.

Options:
  -o, --output <path>   write a self-extracting stub to <path>
  -d, --data <path>     write the raw container (no stub) to <path>
  -u, --update <stub>   repack an existing stub, using <input> as the new payload
      --target <t>      target triple <platform>-<arch>[-<libc>] (default: host)
      --quality <name>  codec override for data outputs (lzfse|lzma|lz4|zlib|zstd)
  -h, --help            show this help
  -v, --version         show version
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "binpress: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("binpress", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	output := flags.StringP("output", "o", "", "")
	data := flags.StringP("data", "d", "", "")
	update := flags.StringP("update", "u", "", "")
	targetStr := flags.String("target", "", "")
	quality := flags.String("quality", "", "")
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
		fmt.Println("binpress " + version)
		return nil
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("expected exactly one input file")
	}
	input := flags.Arg(0)

	var opts []binpress.Option
	if *output != "" {
		opts = append(opts, binpress.WithStubOutput(*output))
	}
	if *data != "" {
		opts = append(opts, binpress.WithDataOutput(*data))
	}
	if *targetStr != "" {
		t, err := target.ParseTriple(*targetStr)
		if err != nil {
			return err
		}
		opts = append(opts, binpress.WithTarget(t))
	}
	if *quality != "" {
		opts = append(opts, binpress.WithCodec(*quality))
	}

	var (
		res *binpress.Result
		err error
	)
	if *update != "" {
		if *data != "" {
			return fmt.Errorf("-u cannot be combined with -d")
		}
		res, err = binpress.Update(*update, input, opts...)
	} else {
		res, err = binpress.Compress(input, opts...)
	}
	if err != nil {
		return err
	}

	fmt.Printf("compressed %s: %d -> %d bytes (%.1f%%, %s, %s)\n",
		input, res.UncompressedSize, res.CompressedSize, res.Ratio()*100, res.Codec, res.Target)
	if res.StubPath != "" {
		fmt.Printf("wrote stub %s\n", res.StubPath)
	}
	if res.DataPath != "" {
		fmt.Printf("wrote data %s\n", res.DataPath)
	}
	return nil
}
