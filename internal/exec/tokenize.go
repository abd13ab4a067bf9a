package exec

import (
	"errors"
	"strings"

	"github.com/google/shlex"
)

// tokenize splits a command string into argv form for the exec path
// (allow_shell = false), grounded on the teacher's own parseCommand.
func tokenize(command string) ([]string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, errors.New("command must be non-empty")
	}
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, errors.New("command tokenized to nothing")
	}
	return argv, nil
}
