package cmdtpl

import (
	"fmt"

	"github.com/google/shlex"
)

// Command renders src against b and splits the result into an argument
// vector using shell-style word-splitting, honoring quoting and
// escaping. The first element is the program name. Command only
// describes the invocation; whether to execute it is the caller's call.
func Command(src string, b Bindings) ([]string, error) {
	tpl, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing command template: %w", err)
	}
	rendered, err := tpl.Render(b)
	if err != nil {
		return nil, err
	}
	argv, err := shlex.Split(rendered)
	if err != nil {
		return nil, fmt.Errorf("tokenizing rendered command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: no program name", ErrEmptyCommand)
	}
	return argv, nil
}
