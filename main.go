package main

import "github.com/Daskott/rolodex/cmd"

func main() {
	cmd.Execute()
}
