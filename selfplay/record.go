package selfplay

import (
	"encoding/gob"
	"io"

	"github.com/pkg/errors"
)

// Record is one completed self-play game: the dense move index played at
// each ply, and the terminal result from the perspective of the side to
// move in the final position.
type Record struct {
	Moves  []int32
	Result float32
}

// WriteRecord gob-encodes a Record to w, the on-disk format for archived
// self-play games.
func WriteRecord(w io.Writer, r Record) error {
	if err := gob.NewEncoder(w).Encode(r); err != nil {
		return errors.Wrap(err, "selfplay: encode record")
	}
	return nil
}

// ReadRecord decodes a Record previously written by WriteRecord.
func ReadRecord(r io.Reader) (Record, error) {
	var rec Record
	if err := gob.NewDecoder(r).Decode(&rec); err != nil {
		return Record{}, errors.Wrap(err, "selfplay: decode record")
	}
	return rec, nil
}
