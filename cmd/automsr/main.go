package main

import "automsr/cmd/automsr/root"

func main() {
	root.Execute()
}
