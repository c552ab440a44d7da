package main

import "diagramio/cmd/diagramio-cli/cmd"

func main() {
	cmd.Execute()
}
