package fsops

// FakeDeleter implements Deleter for testing
// Records all delete calls without touching the filesystem
type FakeDeleter struct {
	Calls []string
	// Err, when set, is returned from every Remove call
	Err error
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	return f.Err
}
