// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/neshexedit/internal/options"
)

// ParseFlags parses command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	if opts.Batch == "" {
		opts.Input = args[0]
	}

	if err := validateOptionCombinations(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: neshexedit [options] <file to edit>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// stringList collects the values of a flag that can be passed multiple times.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to edit, please pass the file to edit as last argument", arg),
			}
		}
	}
	return nil
}

func validateOptionCombinations(opts options.Program) error {
	if opts.Batch != "" && opts.Shell {
		return &UsageError{msg: "the interactive shell can not be combined with batch processing"}
	}
	if opts.Batch != "" && opts.Output != "" {
		return &UsageError{msg: "an output file can not be set for batch processing"}
	}
	if opts.Page < 0 {
		return &UsageError{msg: "the page number can not be negative"}
	}
	if opts.Verify && !opts.HasEdits() {
		return &UsageError{msg: "verification requires at least one -set or -text patch"}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output file for edits, defaults to <input>.edited.nes")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask, for example *.nes")
	flags.IntVar(&opts.Page, "page", 0, "number of the page to print as hex dump, starting at 1")
	flags.StringVar(&opts.Find, "find", "", "hex byte sequence to search for, for example \"A9 00 8D\"")
	flags.StringVar(&opts.Goto, "goto", "", "hex address whose page to print")
	flags.Var((*stringList)(&opts.Patches), "set", "patch bytes at an address, ADDR=HEXBYTES, can be repeated")
	flags.Var((*stringList)(&opts.Texts), "text", "patch ASCII text at an address, ADDR=TEXT, can be repeated")
	flags.BoolVar(&opts.Shell, "shell", false, "start the interactive shell after loading the file")
	flags.BoolVar(&opts.Verify, "verify", false, "verify that the saved file kept header and trainer of the input")
	flags.BoolVar(&opts.LowerCase, "lower", false, "print hex digits in lower case")
	flags.BoolVar(&opts.NoASCII, "noascii", false, "do not print the ASCII column")
	flags.BoolVar(&opts.RegionLabels, "regions", false, "prefix rows with their PRG/CHR region")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
