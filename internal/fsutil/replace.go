package fsutil

import (
	"bytes"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	// Register SHA-512 for checksum verification.
	_ "crypto/sha512"
)

// ChecksumFunction verifies the bytes that land on disk.
const ChecksumFunction = crypto.SHA512

var errHashUnavailable = errors.New("hash function unavailable")

// ReplaceFile writes data over the existing file at path through a sibling
// temporary file and a rename, keeping the file's permission bits.
func ReplaceFile(path string, data []byte) error {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !ChecksumFunction.Available() {
		return fmt.Errorf("replace %s: %w", path, errHashUnavailable)
	}

	hasher := ChecksumFunction.New()
	_, _ = hasher.Write(data)

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: info.Mode().Perm(),
		Checksum:   hasher.Sum(nil),
		Hash:       ChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
