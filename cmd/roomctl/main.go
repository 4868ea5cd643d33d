package main

import "github.com/mcoot/roomrank/internal/cli"

func main() {
	cli.Execute()
}
