// Command analyze runs the report pipeline over a local post export without
// a server: print reports as tables, print prompts, export reports to XLSX
// or send a prompt to the configured LLM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
