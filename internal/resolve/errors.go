package resolve

import (
	"fmt"
	"strings"
)

// ErrUnknownTask is returned when a requested or referenced task name is
// not a key in the manifest's tasks table.
type ErrUnknownTask struct {
	Name string
}

func (e *ErrUnknownTask) Error() string {
	return fmt.Sprintf("unknown task %q", e.Name)
}

// ErrCyclicTask is returned when expansion revisits a task already on the
// current expansion stack.
type ErrCyclicTask struct {
	Cycle []string
}

func (e *ErrCyclicTask) Error() string {
	return fmt.Sprintf("cyclic task dependency: %s", strings.Join(e.Cycle, " → "))
}

// ErrPatternMatchedNothing is returned when an include pattern in a
// composite matches zero task names, and no other include in the same
// composite matched anything either.
type ErrPatternMatchedNothing struct {
	Pattern string
}

func (e *ErrPatternMatchedNothing) Error() string {
	return fmt.Sprintf("pattern %q matched no tasks", e.Pattern)
}
