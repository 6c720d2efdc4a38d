package main

import "jsyn/cmd"

func main() {
	cmd.Execute()
}
