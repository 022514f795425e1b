package main

import "github.com/pders01/macrotools/cmd"

func main() {
	cmd.Execute()
}
