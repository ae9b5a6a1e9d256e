package main

import "github.com/Tiliavir/trivial-time-balance/cmd"

func main() {
	cmd.Execute()
}
