// Package runner executes a resolved argument vector with inherited
// standard streams and reports the child's exit status.
package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrNoArgv is returned when Run is called with an empty vector.
var ErrNoArgv = errors.New("empty argument vector")

// Run executes argv[0] with the remaining elements as arguments, in dir,
// with stdin, stdout, and stderr inherited from this process. It blocks
// until the child exits and returns its exit code. A non-zero exit is
// not an error; spawn failures (missing executable, permission denied)
// are.
func Run(dir string, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, ErrNoArgv
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("running %s: %w", argv[0], err)
	}
	return 0, nil
}
