package main

import "github.com/quartzclay/reclaim/cmd"

func main() {
	cmd.Execute()
}
