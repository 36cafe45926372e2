package main

import "github.com/frahmantamala/staff-portal/cmd"

func main() {
	cmd.Execute()
}
