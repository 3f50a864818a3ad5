package gitrepo

import "errors"

// Errors returned by git operations. Check them with errors.Is.
var (
	// ErrCommand is wrapped by every failed git invocation: nonzero exit,
	// termination by a signal or failure to start the binary.
	ErrCommand = errors.New("git command failed")

	// ErrPushRejected is returned when the remote refuses a push, typically
	// because another writer pushed to the branch after our pull.
	ErrPushRejected = errors.New("push rejected by remote")
)
