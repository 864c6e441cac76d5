package main

import (
	"taskdo-service/cmd"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cmd.Execute()
}
