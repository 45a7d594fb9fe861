package main

import "lawdesk/internal/cli"

func main() {
	cli.Execute()
}
