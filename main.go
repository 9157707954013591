package main

import "github.com/notargets/femkernel/cmd"

func main() {
	cmd.Execute()
}
