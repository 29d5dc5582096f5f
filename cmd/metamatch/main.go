package main

import "github.com/mydehq/metamatch/internal/cli"

func main() {
	cli.Execute()
}
