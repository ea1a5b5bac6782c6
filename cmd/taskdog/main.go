// Command taskdog is the Taskdog binary: a server, a one-shot
// optimizer runner, task CRUD, and schema migrations, all sharing the
// same internal/taskdog.Service wiring.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
