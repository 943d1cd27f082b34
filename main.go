package main

import "github.com/pkgbatch/cmd"

func main() {
	cmd.Execute()
}
