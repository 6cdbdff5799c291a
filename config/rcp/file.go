package rcp

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/flashbots/fee-manager/config/rcp/dto"
)

type File struct {
	filePath string
}

func NewFile(filePath string) *File {
	return &File{
		filePath: filePath,
	}
}

// FetchSeed reads and decodes the seed file. Unknown fields are rejected.
func (f *File) FetchSeed() (*dto.Seed, error) {
	seedFile, err := os.Open(f.filePath)
	if err != nil {
		return nil, err
	}

	defer seedFile.Close()

	dec := json.NewDecoder(seedFile)
	dec.DisallowUnknownFields()

	var seed *dto.Seed
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSeed, f.filePath, err)
	}

	if seed == nil {
		seed = &dto.Seed{}
	}

	return seed, nil
}
