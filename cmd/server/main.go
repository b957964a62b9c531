package main

import (
	"github.com/vladprrs/ajtbd/internal/server"
	"github.com/vladprrs/ajtbd/internal/util"
	"github.com/vladprrs/ajtbd/pkg/logger"
	"github.com/vladprrs/ajtbd/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
