// Package id generates identifiers for entities and uploaded files.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// alphanumeric is the alphabet for upload filenames.
	alphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// FilenameLength is the number of random characters in an upload filename.
	FilenameLength = 7
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "community-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Short returns a random alphanumeric string of n characters.
func Short(n int) (string, error) {
	s, err := gonanoid.Generate(alphanumeric, n)
	if err != nil {
		return "", fmt.Errorf("generate short id: %w", err)
	}
	return s, nil
}

// Filename returns a random upload filename with the given extension,
// e.g. "a8Xk2Pq.png".
func Filename(ext string) (string, error) {
	name, err := Short(FilenameLength)
	if err != nil {
		return "", err
	}
	return name + "." + ext, nil
}
