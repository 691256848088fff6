// Command staticlint собирает анализаторы x/tools, staticcheck, go-critic,
// errcheck и собственный osexit в один multichecker.
//
// Запуск:
//
//	go build -o staticlint ./cmd/staticlint
//	./staticlint ./...
package main

import (
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"

	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unusedresult"

	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/quickfix"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	gocritic "github.com/go-critic/go-critic/checkers/analyzer"
	"github.com/kisielk/errcheck/errcheck"
)

func main() {
	multichecker.Main(analyzers()...)
}

// analyzers возвращает все проверки multichecker
func analyzers() []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		OsExitAnalyzer,

		// клиент GeoServer: тело ответа, отмена контекста, разбор JSON
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		errorsas.Analyzer,

		// статусные строки оператора идут через fmt.Fprintf
		printf.Analyzer,

		// fake GeoServer держит состояние под sync.Mutex
		copylock.Analyzer,

		assign.Analyzer,
		bools.Analyzer,
		composite.Analyzer,
		loopclosure.Analyzer,
		nilness.Analyzer,
		shadow.Analyzer,
		tests.Analyzer,
		unusedresult.Analyzer,

		gocritic.Analyzer,
		errcheck.Analyzer,
	}

	// SA, ST, S и QF из staticcheck.io
	for _, group := range [][]*lint.Analyzer{
		staticcheck.Analyzers,
		stylecheck.Analyzers,
		simple.Analyzers,
		quickfix.Analyzers,
	} {
		for _, v := range group {
			checks = append(checks, v.Analyzer)
		}
	}

	return checks
}
