package main

import "github.com/mstovari/framstore/cmd/framstore/cmd"

func main() {
	cmd.Execute()
}
