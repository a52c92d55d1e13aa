// Package recovery turns recovered panic values into task panic errors
package recovery

import (
	"fmt"
	"runtime"

	"github.com/jzx17/gothreadpool/pkg/types"
)

const stackBufferSize = 4096

// NewTaskPanicError builds a TaskPanicError for a value returned by recover.
// It must be called from the deferred function that recovered, so the
// captured stack still shows the panicking frames.
func NewTaskPanicError(workerID int, r any) *types.TaskPanicError {
	var buf [stackBufferSize]byte
	n := runtime.Stack(buf[:], false)

	return &types.TaskPanicError{
		WorkerID: workerID,
		Value:    r,
		Stack:    string(buf[:n]),
	}
}

// Run calls fn and returns the recovered panic, if any
func Run(workerID int, fn func()) (panicErr *types.TaskPanicError) {
	defer func() {
		if r := recover(); r != nil {
			panicErr = NewTaskPanicError(workerID, r)
		}
	}()

	fn()
	return nil
}

// Describe formats a panic error with its stack for diagnostics
func Describe(err *types.TaskPanicError) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v\n%s", err, err.Stack)
}
