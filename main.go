package main

import "github.com/codefl0w/gh-boards/cmd"

func main() {
	cmd.Execute()
}
