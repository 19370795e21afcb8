package exitcodes

// Exit codes for the rmfile binaries.
// rmfile itself always exits Success; the outcome is reported on stdout.
const (
	Success         = 0 // Successful execution
	InvalidConfig   = 2 // Configuration file invalid, or bad command-line usage
	SafetyViolation = 3 // Safety validator blocked an operation
	RuntimeError    = 4 // Runtime error during execution
)
