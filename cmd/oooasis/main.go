package main

import "github.com/theakshaypant/oooasis/cmd/oooasis/cmd"

func main() {
	cmd.Execute()
}
