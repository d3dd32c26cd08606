package main

import (
	"firebundle/cli"
)

func main() {
	cli.Start()
}
