// Package logflags gates per-component debug logging, configured from
// the command line.
package logflags

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	matcher = false
	objfile = false
	any     = false

	logOut io.Writer
)

func makeLogger(flag bool, fields logrus.Fields) *logrus.Entry {
	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	if logOut != nil {
		logger.Out = logOut
	} else {
		logger.Out = os.Stderr
	}
	logger.Level = logrus.PanicLevel
	if flag {
		logger.Level = logrus.DebugLevel
	}
	return logger.WithFields(fields)
}

// Any returns true if any component logging was requested.
func Any() bool { return any }

// Matcher returns true if the matcher should log propagation progress.
func Matcher() bool { return matcher }

// MatcherLogger returns a configured logger for the matching engine.
func MatcherLogger() *logrus.Entry {
	return makeLogger(matcher, logrus.Fields{"layer": "matcher"})
}

// Objfile returns true if object loading should log.
func Objfile() bool { return objfile }

// ObjfileLogger returns a configured logger for object loading and
// disassembly.
func ObjfileLogger() *logrus.Entry {
	return makeLogger(objfile, logrus.Fields{"layer": "objfile"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the logging flags. logStr is a comma separated list of
// component names ("matcher", "objfile" or "all"); logDest is an
// optional file path for the output.
func Setup(logFlag bool, logStr, logDest string) error {
	if logDest != "" {
		f, err := os.OpenFile(logDest, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		logOut = f
	}
	if !logFlag {
		if logStr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	any = true
	if logStr == "" {
		logStr = "matcher"
	}
	for _, comp := range strings.Split(logStr, ",") {
		switch comp {
		case "matcher":
			matcher = true
		case "objfile":
			objfile = true
		case "all":
			matcher = true
			objfile = true
		default:
			return errors.New("invalid log component: " + comp)
		}
	}
	return nil
}

// Close closes the log output file, if any.
func Close() {
	if c, ok := logOut.(io.Closer); ok {
		c.Close()
	}
}
