package main

import "github.com/vietddude/mevwatch/internal/cli"

func main() {
	cli.Execute()
}
