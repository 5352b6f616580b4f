package main

import "github.com/notargets/gowannier/cmd"

func main() {
	cmd.Execute()
}
