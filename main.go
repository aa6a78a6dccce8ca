package main

import "github.com/qorvid/cursor-atlas/cmd"

func main() {
	cmd.Execute()
}
