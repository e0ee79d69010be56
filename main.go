package main

import "github.com/akashicode/pdf2text/cmd"

func main() {
	cmd.Execute()
}
