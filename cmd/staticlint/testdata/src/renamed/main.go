package main

import stdos "os"

func main() {
	stdos.Exit(1) // want "direct os.Exit call in main"
}
