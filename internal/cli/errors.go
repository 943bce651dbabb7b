package cli

import (
	"errors"

	"brainboard/internal/api"
)

// Exit codes reported by the brainboard binary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitTransport   = 3
	ExitApplication = 4
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch api.KindOf(err) {
	case api.KindValidation, api.KindInitialization:
		return ExitUsage
	case api.KindTransport:
		return ExitTransport
	case api.KindApplication:
		return ExitApplication
	}
	var ue usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitFailure
}

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func errUsage(msg string) error {
	return usageError{msg: msg}
}
