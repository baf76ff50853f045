package main

import "menu-admin-go/cmd"

func main() {
	cmd.Execute()
}
