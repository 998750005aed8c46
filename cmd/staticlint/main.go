// Команда staticlint - набор анализаторов для кода nginx-probe.
//
//	go run ./cmd/staticlint ./...
//
// Проверки подобраны под код пробы; asmdecl и cgocall не включены, ассемблера и cgo здесь нет.
//
// HTTP и ресурсы:
//   - bodyclose: тело ответа http.Response закрыто;
//   - httpresponse: resp не используется до проверки ошибки;
//   - lostcancel: функция отмены контекста вызывается;
//   - defers: аргументы defer не вычисляются раньше времени (time.Since).
//
// Ошибки:
//   - errcheck: возвращаемые ошибки не игнорируются;
//   - errorsas: второй аргумент errors.As - указатель;
//   - nilness: сравнения с nil, которые всегда истинны или ложны;
//   - unusedresult: результат fmt.Sprintf и подобных не теряется.
//
// Время и форматы:
//   - timeformat: раскладка 2006-02-01 вместо 2006-01-02;
//   - printf: строки формата fmt совпадают с аргументами;
//   - stringintconv: string(int) вместо strconv;
//   - structtag, unmarshal: JSON-теги снимков и аргументы json.Unmarshal.
//
// Общие: appends, assign, bools, composite, copylock, nilfunc, sigchanyzer,
// stdmethods, tests, unreachable, unusedwrite.
//
// Собственные:
//   - exitboundary: os.Exit только в функции exit пакета main.
package main

import (
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/appends"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/defers"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/sigchanyzer"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/timeformat"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"golang.org/x/tools/go/analysis/passes/unusedwrite"

	"github.com/kisielk/errcheck/errcheck"
	"github.com/timakin/bodyclose/passes/bodyclose"

	"github.com/25x8/nginx-probe/cmd/staticlint/exitboundary"
)

func main() {
	multichecker.Main(analyzers()...)
}

// analyzers возвращает полный набор проверок
func analyzers() []*analysis.Analyzer {
	resources := []*analysis.Analyzer{
		bodyclose.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		defers.Analyzer,
	}

	errorChecks := []*analysis.Analyzer{
		errcheck.Analyzer,
		errorsas.Analyzer,
		nilness.Analyzer,
		unusedresult.Analyzer,
	}

	formats := []*analysis.Analyzer{
		timeformat.Analyzer,
		printf.Analyzer,
		stringintconv.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
	}

	general := []*analysis.Analyzer{
		appends.Analyzer,
		assign.Analyzer,
		bools.Analyzer,
		composite.Analyzer,
		copylock.Analyzer,
		nilfunc.Analyzer,
		sigchanyzer.Analyzer,
		stdmethods.Analyzer,
		tests.Analyzer,
		unreachable.Analyzer,
		unusedwrite.Analyzer,
	}

	var all []*analysis.Analyzer
	all = append(all, resources...)
	all = append(all, errorChecks...)
	all = append(all, formats...)
	all = append(all, general...)
	return append(all, exitboundary.Analyzer)
}
