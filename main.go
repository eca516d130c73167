package main

import (
	"os"

	"github.com/Azure/appengine-prune/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
