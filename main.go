package main

import "github.com/example/photocrop/cmd"

func main() {
	cmd.Execute()
}
