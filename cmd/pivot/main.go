package main

import "github.com/mvp-joe/project-pivot/internal/cli"

func main() {
	cli.Execute()
}
