package main

import "os"

func main() {
	os.Exit(1) // want "os.Exit разрешен только в функции exit"
	exit(run())
}

func run() int {
	defer func() {
		os.Exit(2) // want "os.Exit разрешен только в функции exit"
	}()
	return 0
}

type runner struct{}

func (runner) exit(code int) {
	os.Exit(code) // want "os.Exit разрешен только в функции exit"
}

// Значение функции, а не вызов os.Exit
var quit = os.Exit

func stop() {
	quit(3)
}

func exit(code int) {
	func() {
		os.Exit(code)
	}()
	os.Exit(code)
}
