package main

import "github.com/dimasma0305/scriptwatch/cmd"

func main() {
	cmd.Execute()
}
