package main

import "divine-deck/internal/cli"

func main() {
	cli.Execute()
}
