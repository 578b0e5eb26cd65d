package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"frameworks/ansible/cmd"
	"frameworks/ansible/pkg/ansible/result"
)

func main() {
	if err := cmd.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		// the playbook already reported its own failure; mirror its status
		var exitErr *result.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode > 0 {
			os.Exit(exitErr.ExitCode)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
