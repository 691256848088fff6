package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("start")
	defer func() {
		os.Exit(3) // want "direct os.Exit call in main"
	}()
	os.Exit(1) // want "direct os.Exit call in main"
}

func helper() {
	os.Exit(2)
}

type runner struct{}

func (runner) main() {
	os.Exit(4)
}
