package main

import (
	"fmt"
	"freight-match-service/internal/config"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	config.LoadDotEnv()

	app := &cli.App{
		Name:  "fastshipctl",
		Usage: "Operator utility for the freight matching service",
		Commands: []*cli.Command{
			migrateCmd,
			seedCmd,
			classifyCmd,
			quoteCmd,
			cityDistanceCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}
