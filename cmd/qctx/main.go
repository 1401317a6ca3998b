package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/chriscorrea/qctx/internal/app"
	"github.com/chriscorrea/qctx/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.Execute(ctx)
	stop()

	os.Exit(app.ExitCode(err))
}
