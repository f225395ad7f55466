package main

import "portfolio-dashboard/internal/cli"

func main() {
	cli.Execute()
}
