package estimator

import (
	"errors"
	"fmt"
)

// Exit codes for fatal infrastructure conditions. These are an external
// contract for automation wrapping the tool.
const (
	ExitUsage        = 1
	ExitAutodiscover = 2
	ExitRootFolder   = 3
)

// FatalError marks an infrastructure failure that terminates the batch
// unless continue-on-error is set.
type FatalError struct {
	Code    int
	Mailbox string
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Mailbox, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error from Run to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return fatal.Code
	}
	return ExitUsage
}
