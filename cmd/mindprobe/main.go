package main

import "github.com/BeyzaCankayaa/mindprobe/internal/cli"

func main() {
	cli.Execute()
}
