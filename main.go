package main

import "arxml-merger/cmd"

func main() {
	cmd.Execute()
}
