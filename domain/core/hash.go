package core

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Checksum is the hex xxhash64 digest of a written artifact
type Checksum string

// NewChecksum hashes an in-memory payload
func NewChecksum(data []byte) Checksum {
	return Checksum(strconv.FormatUint(xxhash.Sum64(data), 16))
}

// FileChecksum streams a file through xxhash
func FileChecksum(path string) (Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChecksumFailed, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: %v", ErrChecksumFailed, err)
	}
	return Checksum(strconv.FormatUint(h.Sum64(), 16)), nil
}

func (c Checksum) String() string { return string(c) }

// IsEmpty checks if the checksum is empty
func (c Checksum) IsEmpty() bool { return c == "" }
