package main

import "github.com/sf1tzp/symbology-sub000/cli"

func main() {
	cli.Execute()
}
