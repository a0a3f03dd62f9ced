// Contains various utility functions related to logging.

package cli

import (
	"os"
	"path/filepath"

	cli "github.com/peterebden/go-cli-init/v5/logging"
	"golang.org/x/term"
	"gopkg.in/op/go-logging.v1"

	logger "github.com/thought-machine/analysis/src/cli/logging"
)

var log = logger.Log

// StdErrIsATerminal is true if the process' stderr is an interactive TTY.
var StdErrIsATerminal = IsATerminal(os.Stderr)

// A Verbosity is used as a flag to define logging verbosity.
type Verbosity = cli.Verbosity

// InitLogging initialises logging to stderr at the given verbosity.
func InitLogging(verbosity Verbosity) {
	setLogBackend(logging.Level(verbosity), nil)
}

// InitFileLogging initialises logging to stderr and additionally to a file.
// The returned function closes the file and should be called before exiting.
func InitFileLogging(verbosity Verbosity, logFile string, logFileLevel Verbosity) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(logFile), os.ModeDir|0775); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	fileBackend := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(file, "", 0), logFormatter(false)))
	fileBackend.SetLevel(logging.Level(logFileLevel), "")
	setLogBackend(logging.Level(verbosity), fileBackend)
	return func() {
		setLogBackend(logging.Level(verbosity), nil)
		file.Close()
	}, nil
}

func logFormatter(coloured bool) logging.Formatter {
	formatStr := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		formatStr = "%{color}" + formatStr + "%{color:reset}"
	}
	return logging.MustStringFormatter(formatStr)
}

func setLogBackend(level logging.Level, fileBackend logging.LeveledBackend) {
	backend := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), logFormatter(StdErrIsATerminal)))
	backend.SetLevel(level, "")
	if fileBackend == nil {
		logging.SetBackend(backend)
		return
	}
	logging.SetBackend(backend, fileBackend)
}

// IsATerminal returns true if the given file is an interactive TTY.
func IsATerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}
