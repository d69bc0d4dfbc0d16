package helpers

import (
	"fmt"
	"runtime"
	"strings"
)

const modulePrefix = "github.com/evanw/treeshake/"

// The call stack of the caller, one "function (file:line)" per line with
// frames from the Go runtime left out. Meant for the note of a panic.
func PrettyPrintedStack() string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var lines []string
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			name := strings.TrimPrefix(frame.Function, modulePrefix)
			if slash := strings.LastIndexByte(name, '/'); slash != -1 {
				name = name[slash+1:]
			}
			file := frame.File
			if index := strings.Index(file, modulePrefix); index != -1 {
				file = file[index+len(modulePrefix):]
			}
			lines = append(lines, fmt.Sprintf("%s (%s:%d)", name, file, frame.Line))
		}
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}
