package main

// Exit codes for the pooppdf CLI.
// Any failure exits 1, like the shell scripts that wrap pooppdf expect.
const (
	ExitSuccess = 0 // PDF written
	ExitFailure = 1 // Usage, configuration, browser or write error
)

// exitCodeFor returns the exit code for an error.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitFailure
}
