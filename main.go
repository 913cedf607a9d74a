package main

import "github.com/iksnae/eebc-chat/cmd"

func main() {
	cmd.Execute()
}
