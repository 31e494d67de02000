package checkpointer

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/exputils/experiment"
)

// Record is the unit persisted in a checkpoint file.
//
// Models, Optimizers, and Schedulers hold one state blob per tracked
// component, in the order the components were given to Save. A nil
// slice means the component kind was not tracked.
type Record struct {
	Step      int
	Score     float64
	LastStep  int
	BestStep  int
	BestScore *float64 // nil if no score has improved on the default

	Models     [][]byte
	Optimizers [][]byte
	Schedulers [][]byte

	Config experiment.Config
}

// states collects the state blobs of a sequence of Staters
func states(components []Stater) ([][]byte, error) {
	if components == nil {
		return nil, nil
	}

	blobs := make([][]byte, len(components))
	for i, c := range components {
		blob, err := c.StateDict()
		if err != nil {
			return nil, errors.Wrapf(err, "could not get state of "+
				"component %d", i)
		}
		blobs[i] = blob
	}
	return blobs, nil
}

// restore loads saved state blobs into a sequence of Staters,
// pairing them by position. If the sequences have different
// lengths, the extra elements of the longer one are ignored.
func restore(components []Stater, blobs [][]byte) error {
	if components == nil || blobs == nil {
		return nil
	}

	n := len(components)
	if len(blobs) < n {
		n = len(blobs)
	}
	for i := 0; i < n; i++ {
		if err := components[i].LoadStateDict(blobs[i]); err != nil {
			return errors.Wrapf(err, "could not load state of "+
				"component %d", i)
		}
	}
	return nil
}

// encode gob encodes the Record
func (r *Record) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(r); err != nil {
		return nil, errors.Wrap(err, "encode: could not encode record")
	}
	return buf.Bytes(), nil
}

// ReadRecord decodes the checkpoint Record stored in file filename
func ReadRecord(filename string) (*Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "readrecord: could not open checkpoint")
	}
	defer file.Close()

	var r Record
	dec := gob.NewDecoder(file)
	if err := dec.Decode(&r); err != nil {
		return nil, errors.Wrapf(err, "readrecord: could not decode "+
			"checkpoint %v", filename)
	}
	return &r, nil
}

// writeFile writes data to filename through a temporary file in the
// same directory, so a crash mid-write leaves the old file in place.
func writeFile(filename string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename),
		filepath.Base(filename)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filename)
}
