package main

import "github.com/andrejsstepanovs/hackbright/cmd"

func main() {
	cmd.Execute()
}
