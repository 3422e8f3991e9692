package main

import "github.com/sidegen/sidegen/cmd"

func main() {
	cmd.Execute()
}
