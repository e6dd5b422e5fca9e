package main

import "recipe-importer/internal/cli"

func main() {
	cli.Execute()
}
