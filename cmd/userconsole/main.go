package main

import "github.com/osa911/userconsole/internal/cli"

func main() {
	cli.Execute()
}
