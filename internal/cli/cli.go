package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/fanengine/internal/app"
	"github.com/vk/fanengine/internal/engine"
	"github.com/vk/fanengine/internal/observer"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("fanengine", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
fanengine - a parallel fan-out execution engine.

Usage:
  fanengine [options] [SLICE_PATH]

Arguments:
  SLICE_PATH
    Path to a single .hcl file or a directory containing .hcl files
    describing slices, invocations, and dependency edges.

Options:
`)
		flagSet.PrintDefaults()
	}

	sliceFlag := flagSet.String("slices", "", "Path to the slice file or directory.")
	sFlag := flagSet.String("s", "", "Path to the slice file or directory (shorthand).")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	threadsFlag := flagSet.Int("threads", 0, "Number of worker threads. 0 uses GOMAXPROCS.")
	batchFlag := flagSet.Int("batch-size", 0, "Number of slices run per window. 0 runs every slice in a single window.")
	silentFlag := flagSet.Bool("silent", false, "Suppress the engine's own stdout progress output; observer callbacks still fire.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *sliceFlag != "" {
		path = *sliceFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	runFlag := observer.Tracked
	if *silentFlag {
		runFlag = observer.Silent
	}

	batchSize := *batchFlag
	if batchSize == 0 {
		batchSize = engine.Unbatched
	}

	config, err := app.NewConfig(app.Config{
		SlicePaths: []string{path},
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		NumThreads: *threadsFlag,
		BatchSize:  batchSize,
		RunFlag:    runFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
