// Command rat detects recombination breakpoints in a recombinant sequence by
// comparing it window by window against two parent sequences.
//
// Usage:
//
//	rat <d|r> <recombinant> <parent1> <parent2> [threads] [window] [step] [flags]
//	rat align <d|r> <file1> <file2> [flags]
//	rat stats <d|r> <file>...
//	rat version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	// Normalize cancellation exit code.
	if ctx.Err() != nil && code != 0 {
		code = 130
	}

	stop()
	os.Exit(code)
}
