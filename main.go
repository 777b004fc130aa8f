// main.go

package main

import (
	"github.com/forgeworks/forge/cmd"
	"github.com/forgeworks/forge/pkg/logger"
	"github.com/forgeworks/forge/pkg/telemetry"
)

func main() {
	logger.InitializeWithFallback()

	if err := telemetry.Init("forge"); err != nil {
		logger.L().Warn("Telemetry disabled: " + err.Error())
	}

	cmd.Execute()
}
