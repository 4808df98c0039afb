package main

import (
	"os"

	"github.com/rocketship-ai/scriptstep/internal/cli"
	"github.com/rocketship-ai/scriptstep/internal/interpreter"
	"github.com/rocketship-ai/scriptstep/internal/plugins"

	// Import plugins to trigger auto-registration
	_ "github.com/rocketship-ai/scriptstep/internal/plugins/script"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	// Initialize logging
	cli.InitLogging()
	logger := cli.Logger
	settings := cli.LoadSettings()

	logger.Debug("connecting to temporal", "host", settings.TemporalHost)
	c, err := client.Dial(client.Options{
		HostPort: settings.TemporalHost,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create temporal client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	logger.Debug("creating worker for task queue", "queue", settings.TaskQueue)
	w := worker.New(c, settings.TaskQueue, worker.Options{})

	logger.Debug("registering workflow and plugins")
	w.RegisterWorkflow(interpreter.BuildWorkflow)
	plugins.RegisterAllWithTemporal(w)

	logger.Info("starting worker", "queue", settings.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}
}
