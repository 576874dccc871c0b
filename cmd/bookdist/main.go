package main

import "github.com/LadyAlena/sql-homeworks-6/cmd/bookdist/commands"

func main() {
	commands.Execute()
}
