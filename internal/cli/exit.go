package cli

import (
	"errors"

	"github.com/stridecli/stride/internal/argstring"
	"github.com/stridecli/stride/internal/manifest"
	"github.com/stridecli/stride/internal/resolve"
)

// exitCodeFor maps a top-level error to the process exit code per §7:
// manifest-stage and resolution-stage errors are both 2 (UnknownTask,
// CyclicTask, PatternMatchedNothing, BadPlaceholder included); everything
// else reaching this point (bad flags) is a usage error, 1.
func exitCodeFor(err error) int {
	var notFound *manifest.ErrManifestNotFound
	var parseErr *manifest.ErrManifestParse
	var noTasks *manifest.ErrNoTasks
	var unknownKey *manifest.ErrUnknownTaskKey
	var ambiguous *manifest.ErrAmbiguousTaskBody
	var empty *manifest.ErrEmptyTaskBody
	var unknownTask *resolve.ErrUnknownTask
	var cyclicTask *resolve.ErrCyclicTask
	var patternMatchedNothing *resolve.ErrPatternMatchedNothing
	var badPlaceholder *argstring.BadPlaceholder

	switch {
	case errors.As(err, &notFound),
		errors.As(err, &parseErr),
		errors.As(err, &noTasks),
		errors.As(err, &unknownKey),
		errors.As(err, &ambiguous),
		errors.As(err, &empty),
		errors.As(err, &unknownTask),
		errors.As(err, &cyclicTask),
		errors.As(err, &patternMatchedNothing),
		errors.As(err, &badPlaceholder):
		return 2
	default:
		return 1
	}
}
