package main

import "github.com/mayike4315/gpt-web/cmd"

func main() {
	cmd.Execute()
}
