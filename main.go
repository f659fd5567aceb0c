package main

import "github.com/montrey/fastfolder/cmd"

func main() {
	cmd.Execute()
}
