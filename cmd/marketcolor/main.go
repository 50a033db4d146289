// Package main is the entry point of the marketcolor briefing job.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	SetVersion(version)
	err := Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
	}
	os.Exit(exitCode(err))
}

// exitCode maps a run result to the process status: 0 on success, 1 for any
// missing credential, delivery failure or other error.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
