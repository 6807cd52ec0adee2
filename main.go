package main

import "github.com/frahmantamala/finance-tracker/cmd"

func main() {
	cmd.Execute()
}
