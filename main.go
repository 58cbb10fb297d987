package main

import "leapdb/pkg/cli"

func main() {
	cli.Execute()
}
