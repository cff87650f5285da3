package circuit

import (
	"fmt"
	"os"
	"strings"
)

// Script is the disposable circuit description handed to the solver
// session. Its lifetime is one solve: acquired by Build, consumed by
// the solve adapter, and released via Close regardless of whether the
// solve succeeded.
type Script struct {
	path string
}

func newScript(statements []string) (*Script, error) {
	f, err := os.CreateTemp("", "gridgen-*.dss")
	if err != nil {
		return nil, fmt.Errorf("circuit: create script: %w", err)
	}

	if _, err := f.WriteString(strings.Join(statements, "\n") + "\n"); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("circuit: write script: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("circuit: close script: %w", err)
	}

	return &Script{path: f.Name()}, nil
}

// Path returns the script file location for the solver session to
// compile.
func (s *Script) Path() string {
	return s.path
}

// Close removes the script file. Safe to call more than once.
func (s *Script) Close() error {
	if s == nil || s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	s.path = ""
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("circuit: remove script: %w", err)
	}
	return nil
}
