package main

import "github.com/dynalint/dynalint/cmd"

func main() {
	cmd.Execute()
}
