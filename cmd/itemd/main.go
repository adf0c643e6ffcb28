package main

import "github.com/itemledger/itemd/internal/cli"

func main() {
	cli.Execute()
}
