package main

import "github.com/dan-solli/journeygraph/cmd/journey/cmd"

func main() {
	cmd.Execute()
}
