// Package main is the entry point for the naughty assistant server.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/kart-io/naughty-assistant/cmd/assistant/app"
)

func main() {
	app.NewApp().Run()
}
