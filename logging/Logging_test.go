package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/samuelfneumann/exputils/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func newConfig(t *testing.T) *experiment.Config {
	cfg := experiment.NewConfig()
	cfg.LogDir = t.TempDir()
	cfg.LogFile = filepath.Join(cfg.LogDir, experiment.LogFilename)
	return cfg
}

func readFile(t *testing.T, filename string) string {
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	return string(data)
}

func TestInitConsoleAndFile(t *testing.T) {
	t.Cleanup(Reset)
	cfg := newConfig(t)
	var console bytes.Buffer

	c, err := initWith(cfg, []string{"train", "--seed", "3"}, &console)
	require.NoError(t, err)

	klog.Infof("info %d", 1)
	klog.V(1).Infof("debug %d", 2)
	require.NoError(t, c.Close())

	out := console.String()
	assert.Contains(t, out, "COMMAND: train --seed 3")
	assert.Contains(t, out, "Arguments: {Seed:0")
	assert.Contains(t, out, "info 1")
	assert.NotContains(t, out, "debug 2")

	logged := readFile(t, cfg.LogFile)
	assert.Contains(t, logged, "COMMAND: train --seed 3")
	assert.Contains(t, logged, "info 1")
	assert.Contains(t, logged, "debug 2")

	assert.Equal(t, []string{"train", "--seed", "3"}, cfg.Args)
}

func TestInitNoLog(t *testing.T) {
	t.Cleanup(Reset)
	cfg := newConfig(t)
	cfg.NoLog = true
	var console bytes.Buffer

	c, err := initWith(cfg, []string{"train"}, &console)
	require.NoError(t, err)
	defer c.Close()

	klog.V(1).Infof("debug")
	assert.NoFileExists(t, cfg.LogFile)
	assert.Contains(t, console.String(), "COMMAND: train")
	assert.NotContains(t, console.String(), "debug")
}

func TestInitTruncatesUnlessResuming(t *testing.T) {
	t.Cleanup(Reset)
	cfg := newConfig(t)
	require.NoError(t, os.WriteFile(cfg.LogFile, []byte("old run\n"), 0644))

	c, err := initWith(cfg, []string{"train"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.NotContains(t, readFile(t, cfg.LogFile), "old run")

	// Resuming without an existing restore file still truncates
	require.NoError(t, os.WriteFile(cfg.LogFile, []byte("old run\n"), 0644))
	cfg.ResumeTraining = true
	cfg.RestoreFile = filepath.Join(cfg.LogDir, "missing.pt")
	c, err = initWith(cfg, []string{"train"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.NotContains(t, readFile(t, cfg.LogFile), "old run")
}

func TestInitAppendsWhenResuming(t *testing.T) {
	t.Cleanup(Reset)
	cfg := newConfig(t)
	require.NoError(t, os.WriteFile(cfg.LogFile, []byte("old run\n"), 0644))

	cfg.ResumeTraining = true
	cfg.RestoreFile = filepath.Join(cfg.LogDir, "checkpoint_last.pt")
	require.NoError(t, os.WriteFile(cfg.RestoreFile, []byte("ckpt"), 0644))

	c, err := initWith(cfg, []string{"train", "--resume-training"},
		&bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	logged := readFile(t, cfg.LogFile)
	assert.Contains(t, logged, "old run")
	assert.Contains(t, logged, "COMMAND: train --resume-training")
}

func TestSinkFormat(t *testing.T) {
	var console, file bytes.Buffer
	s := newSink(&console, &file)
	s.now = func() time.Time {
		return time.Date(2021, 8, 1, 12, 30, 0, 0, time.UTC)
	}

	log := logr.New(s).WithName("ckpt").WithValues("step", 3)
	log.Info("saved", "score", 0.5)
	log.V(1).Info("details")
	log.Error(errors.New("disk full"), "failed")

	assert.Equal(t,
		"[2021-08-01 12:30:00] ckpt: saved step=3 score=0.5\n"+
			"[2021-08-01 12:30:00] ckpt: failed step=3 err=disk full\n",
		console.String())
	assert.Contains(t, file.String(), "ckpt: details step=3\n")
	assert.Contains(t, file.String(), "ckpt: saved step=3 score=0.5\n")
}

func TestSinkEnabled(t *testing.T) {
	consoleOnly := newSink(&bytes.Buffer{}, nil)
	assert.True(t, consoleOnly.Enabled(InfoLevel))
	assert.False(t, consoleOnly.Enabled(DebugLevel))

	withFile := newSink(&bytes.Buffer{}, &bytes.Buffer{})
	assert.True(t, withFile.Enabled(DebugLevel))
	assert.False(t, withFile.Enabled(DebugLevel+1))
}
