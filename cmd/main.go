package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/yungbote/qubitgyan-student/internal/app"
	"github.com/yungbote/qubitgyan-student/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		application.Log.Error("gateway stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
}
