package util

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
)

var FlagVerbose = false

func init() {
	log.SetFlags(0)
}

func Verbosef(format string, v ...interface{}) {
	if FlagVerbose {
		log.Printf(format, v...)
	}
}

func Warnf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

func Fatalf(format string, v ...interface{}) {
	log.Fatalf(format, v...)
}

func Assert(err error, v ...interface{}) {
	if err != nil {
		if len(v) == 0 {
			Fatalf("ERROR: %s.", err)
		} else {
			format := v[0].(string)
			v = v[1:]
			Fatalf("%s: %s.", fmt.Sprintf(format, v...), err)
		}
	}
}

// Logger returns a logger for progress messages. It writes to stderr when
// -verbose is set, and is nil otherwise.
func Logger() *log.Logger {
	if !FlagVerbose {
		return nil
	}
	return log.New(os.Stderr, "", 0)
}

// FlagSet returns the names of the flags that were given on the command
// line. It must be called after FlagParse.
func FlagSet() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

// Usage just calls `flag.Usage`. It's included here to avoid
// an extra import to `flag` just to call Usage.
func Usage() {
	flag.Usage()
}

// Arg just calls `flag.Arg`.
func Arg(i int) string {
	return flag.Arg(i)
}

func AssertNArg(n int) {
	if flag.NArg() != n {
		flag.Usage()
	}
}

// FlagParse registers -verbose, installs a usage message and parses the
// command line.
func FlagParse(positional string, desc string) {
	flag.BoolVar(&FlagVerbose, "verbose", FlagVerbose,
		"When set, every cleaning step is logged to stderr.")

	flag.Usage = func() {
		log.Printf("Usage: %s [flags] %s\n\n",
			path.Base(os.Args[0]), positional)
		if len(desc) > 0 {
			log.Printf("%s\n", desc)
		}
		flag.VisitAll(func(fl *flag.Flag) {
			var def string
			if len(fl.DefValue) > 0 {
				def = fmt.Sprintf(" (default: %s)", fl.DefValue)
			}

			usage := strings.Replace(fl.Usage, "\n", "\n    ", -1)
			log.Printf("-%s%s\n", fl.Name, def)
			log.Printf("    %s\n", usage)
		})
		os.Exit(1)
	}
	flag.Parse()
}

// Warning logs err (prefixed with the formatted message in v, if any) and
// returns true when err is not nil.
func Warning(err error, v ...interface{}) bool {
	if err != nil {
		if len(v) == 0 {
			Warnf("WARNING: %s.", err)
		} else {
			format := v[0].(string)
			v = v[1:]
			Warnf("%s: %s.", fmt.Sprintf(format, v...), err)
		}
		return true
	}
	return false
}
