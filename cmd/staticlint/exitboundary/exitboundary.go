// Package exitboundary определяет анализатор, ограничивающий вызовы os.Exit.
//
// Код завершения пробы вычисляется один раз на границе процесса, поэтому
// os.Exit разрешен только внутри функции exit пакета main. Любой другой вызов,
// включая вызов из main и из библиотечных пакетов, считается ошибкой.
package exitboundary

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// boundary - имя единственной функции, которой разрешен os.Exit
const boundary = "exit"

var Analyzer = &analysis.Analyzer{
	Name:     "exitboundary",
	Doc:      "os.Exit разрешен только в функции exit пакета main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	isMain := pass.Pkg.Name() == "main"

	insp.WithStack(nodeFilter, func(node ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}

		call := node.(*ast.CallExpr)
		if !isOSExit(pass, call) {
			return true
		}

		if strings.HasSuffix(pass.Fset.File(call.Pos()).Name(), "_test.go") {
			return true
		}

		fn := enclosingFunc(stack)
		if isMain && fn != nil && fn.Recv == nil && fn.Name.Name == boundary {
			return true
		}

		if isMain {
			pass.Reportf(call.Pos(), "os.Exit разрешен только в функции %s", boundary)
		} else {
			pass.Reportf(call.Pos(), "os.Exit вне пакета main запрещен, верните ошибку")
		}
		return true
	})

	return nil, nil
}

func isOSExit(pass *analysis.Pass, call *ast.CallExpr) bool {
	fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}

// enclosingFunc возвращает объявление функции верхнего уровня, содержащей узел
func enclosingFunc(stack []ast.Node) *ast.FuncDecl {
	for _, n := range stack {
		if fd, ok := n.(*ast.FuncDecl); ok {
			return fd
		}
	}
	return nil
}
