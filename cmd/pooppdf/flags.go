package main

import (
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-pooppdf/internal/fileutil"
)

// defaultLogPath is used by -l without a value.
const defaultLogPath = "pooppdf.log"

// Flag names referenced when merging with the config file.
const (
	flagSelector    = "selector"
	flagPath        = "path"
	flagTitle       = "title"
	flagPageNumbers = "page-numbers"
	flagLogging     = "enable-logging"
	flagTimeout     = "timeout"
	flagEngine      = "engine"
)

// cliFlags holds all command-line flags.
type cliFlags struct {
	selector    string
	path        string
	title       string
	pageNumbers bool
	logPath     string // Empty = logging disabled
	timeout     string
	engine      string
	config      string
	verbose     bool
	version     bool
	help        bool

	// changed records flags set on the command line, so they can win over
	// config values even when set to their zero value.
	changed map[string]bool
}

// isSet reports whether name was given on the command line.
func (f *cliFlags) isSet(name string) bool {
	return f.changed[name]
}

// parseFlags parses args (without the program name) and returns positional args.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("pooppdf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	f := &cliFlags{changed: make(map[string]bool)}

	fs.StringVarP(&f.selector, flagSelector, "s", "", "CSS selector that must exist before the PDF is generated")
	fs.StringVarP(&f.path, flagPath, "p", "", "file path or s3://bucket/key to save the PDF to (default \"output.pdf\")")
	fs.StringVarP(&f.title, flagTitle, "t", "", "title to show in the header of every page")
	fs.BoolVarP(&f.pageNumbers, flagPageNumbers, "n", false, "show page numbers in the footer")
	fs.StringVarP(&f.logPath, flagLogging, "l", "", "enable logging, optionally to the given file")
	fs.Lookup(flagLogging).NoOptDefVal = defaultLogPath
	fs.StringVar(&f.timeout, flagTimeout, "", "capture timeout (e.g., 45s, 2m)")
	fs.StringVar(&f.engine, flagEngine, "", "browser engine: rod, chromedp")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&f.verbose, "verbose", false, "print log events to stderr")
	fs.BoolVarP(&f.version, "version", "v", false, "print version")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	if err := fs.Parse(joinOptionalValues(args)); err != nil {
		return nil, nil, err
	}

	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	return f, fs.Args(), nil
}

// joinOptionalValues rewrites "-l file" as "--enable-logging=file".
// pflag only binds optional values written with "=", so the separate form
// would otherwise turn the log file into the url. A following url or flag is
// never taken as the log file.
func joinOptionalValues(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if (arg == "-l" || arg == "--"+flagLogging) && i+1 < len(args) {
			next := args[i+1]
			if !strings.HasPrefix(next, "-") && !fileutil.IsURL(next) {
				out = append(out, "--"+flagLogging+"="+next)
				i++
				continue
			}
		}
		out = append(out, arg)
	}
	return out
}
