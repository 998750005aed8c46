package b

import "os"

func exit(code int) {
	os.Exit(code) // want "os.Exit вне пакета main запрещен"
}

func Fail() {
	exit(1)
}
