package main

import "github.com/katanabench/katana/cmd/katana/cli"

func main() {
	cli.Execute()
}
