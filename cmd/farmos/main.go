package main

import "harvest-planner/internal/cli"

func main() {
	cli.Execute()
}
