package main

import "github.com/nfrund/portcullis/cmd/portcullis/cmd"

func main() {
	cmd.Execute()
}
