package utils

import "github.com/pkg/errors"

// Assert panics with a formatted error when condition is false.
func Assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(errors.Errorf(format, args...))
	}
}
