package main

import "github.com/amterp/memmap/internal/cli"

func main() {
	cli.Run()
}
