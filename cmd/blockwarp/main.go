package main

import (
	"blockwarp/internal/cli"
	"blockwarp/internal/logging"
)

func main() {
	logging.Init()
	cli.Execute()
}
