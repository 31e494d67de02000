// Package logging installs the process-wide logger used by an
// experiment. Call sites log through klog; Init routes klog to a
// console writer for info level messages and, unless logging to file
// is disabled, to the experiment's log file for messages up to debug
// level (klog.V(1)).
package logging

import (
	"flag"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/exputils/experiment"
	"k8s.io/klog/v2"
)

// Init installs the process-wide logger described by cfg and logs the
// command line args and the configuration. The log file, if any, is
// opened in append mode when resuming training from an existing
// restore file and truncated otherwise.
//
// The returned io.Closer closes the log file. The logger itself stays
// installed for the lifetime of the process.
func Init(cfg *experiment.Config, args []string) (io.Closer, error) {
	return initWith(cfg, args, os.Stderr)
}

func initWith(cfg *experiment.Config, args []string,
	console io.Writer) (io.Closer, error) {
	var file *os.File
	if !cfg.NoLog && cfg.LogFile != "" {
		flags := os.O_CREATE | os.O_WRONLY
		if resuming(cfg) {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}

		var err error
		file, err = os.OpenFile(cfg.LogFile, flags, 0644)
		if err != nil {
			return nil, errors.Wrapf(err, "init: could not open log file %v",
				cfg.LogFile)
		}
	}

	var s *sink
	if file != nil {
		s = newSink(console, file)
	} else {
		s = newSink(console, nil)
	}
	if err := install(s); err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}

	cfg.Args = append([]string(nil), args...)
	klog.Infof("COMMAND: %v", strings.Join(args, " "))
	klog.Infof("Arguments: %v", cfg)

	return &closer{file}, nil
}

// resuming returns whether training resumes from an existing restore
// file
func resuming(cfg *experiment.Config) bool {
	if !cfg.ResumeTraining || cfg.RestoreFile == "" {
		return false
	}
	info, err := os.Stat(cfg.RestoreFile)
	return err == nil && info.Mode().IsRegular()
}

// install sets s as the klog backend and enables klog verbosity up to
// the debug level.
func install(s *sink) error {
	var fs flag.FlagSet
	klog.InitFlags(&fs)
	if err := fs.Set("v", strconv.Itoa(DebugLevel)); err != nil {
		return errors.Wrap(err, "install: could not set verbosity")
	}

	klog.SetLogger(logr.New(s))
	return nil
}

// Reset detaches the logger installed by Init, returning klog to its
// default output.
func Reset() {
	klog.ClearLogger()
}

// closer closes the log file opened by Init, if there is one
type closer struct {
	file *os.File
}

// Close implements the io.Closer interface
func (c *closer) Close() error {
	if c.file == nil {
		return nil
	}
	return c.file.Close()
}
