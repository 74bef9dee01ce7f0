// Command shellwrap builds command lines from named parameters and runs them
// with a working directory, environment and deadline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/shellwrap/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := newApp()
	err := a.execute(ctx, a.newRootCmd())
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "shellwrap:", message(err))
		os.Exit(errors.ExitStatusOf(err))
	}
}
