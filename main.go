package main

import "github.com/solutions-console/provision-wizard/cmd"

func main() {
	cmd.Execute()
}
