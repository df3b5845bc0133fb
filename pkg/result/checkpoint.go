package result

import (
	"encoding/gob"
	"os"
)

// Checkpoint holds enough state to resume an interrupted analysis run: the
// outcomes found so far and how far the outer synchronization-order sweep
// had gotten.
type Checkpoint struct {
	Outcomes    []Outcome
	ExploredSOs int
	TotalSOs    int
}

func init() {
	gob.Register(Outcome{})
	gob.Register(Exception{})
}

// SaveCheckpoint writes ckpt to path.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint reads a Checkpoint previously written by SaveCheckpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
