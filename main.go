package main

import "github.com/mhi-bio/mhi/cmd"

func main() {
	cmd.Execute()
}
