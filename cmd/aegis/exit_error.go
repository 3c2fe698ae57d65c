package main

import "fmt"

const exitCodeUsage = 2

type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string {
	if e == nil {
		return ""
	}
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit %d", e.code)
}

func (e *exitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// usageError reports invalid flags or arguments with the usage exit code.
func usageError(format string, args ...any) error {
	return &exitError{code: exitCodeUsage, err: fmt.Errorf(format, args...)}
}
