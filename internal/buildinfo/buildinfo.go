package buildinfo

import (
	"fmt"
	"io"
)

// Значения подставляются при сборке через -ldflags "-X ..."
var (
	BuildVersion = "N/A"
	BuildDate    = "N/A"
	BuildCommit  = "N/A"
)

// PrintBuildInfo печатает сведения о сборке
func PrintBuildInfo(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", BuildVersion)
	fmt.Fprintf(w, "Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "Build commit: %s\n", BuildCommit)
}

// UserAgent возвращает значение заголовка User-Agent пробы
func UserAgent() string {
	return "nginx-probe/" + BuildVersion
}
