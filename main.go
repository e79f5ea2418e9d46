package main

import "github.com/agentic-research/structlink/cmd"

func main() {
	cmd.Execute()
}
