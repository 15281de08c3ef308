package main

import "prio/cmd/prio/root"

func main() {
	root.Execute()
}
