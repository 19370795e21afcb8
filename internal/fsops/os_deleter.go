package fsops

import "os"

// OSDeleter implements Deleter using the real os package call
// os.Remove unlinks files and empty directories only; it never recurses
type OSDeleter struct{}

func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}
