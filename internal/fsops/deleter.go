package fsops

// Deleter abstracts the single-entry filesystem removal primitive
// Enables mocking in tests to prove usage errors never delete
type Deleter interface {
	Remove(path string) error
}
