// Package phaseorder implements an analyzer that reports lifecycle calls on a
// runtime-checked monitor made before the phase they depend on.
package phaseorder

import (
	"go/ast"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer tracks monitors created with checked.New inside one function and
// reports Fetch with no earlier Connect and Display with no earlier Fetch.
//
// Order is textual: a call anywhere above counts, branches are not followed.
// Close drops the connection; fetched metrics stay readable. A line carrying
// a "phaseorder:ignore" comment is skipped.
var Analyzer = &analysis.Analyzer{
	Name: "phaseorder",
	Doc:  "report Fetch before Connect and Display before Fetch on checked monitors",
	Run:  run,
}

const checkedPkgSuffix = "/monitor/checked"

type phase struct {
	connected bool
	fetched   bool
}

func run(pass *analysis.Pass) (any, error) {
	for _, f := range pass.Files {
		if isGenerated(f) || importsTesting(f) {
			continue
		}
		ignored := ignoredLines(pass, f)

		ast.Inspect(f, func(n ast.Node) bool {
			fd, ok := n.(*ast.FuncDecl)
			if !ok || fd.Body == nil {
				return true
			}
			checkBody(pass, fd.Body, ignored)
			return false
		})
	}
	return nil, nil
}

func checkBody(pass *analysis.Pass, body *ast.BlockStmt, ignored map[int]bool) {
	tracked := make(map[types.Object]*phase)

	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignStmt:
			for i, rhs := range n.Rhs {
				if i >= len(n.Lhs) || !isCheckedNew(pass, rhs) {
					continue
				}
				if id, ok := n.Lhs[i].(*ast.Ident); ok {
					if obj := objectOf(pass, id); obj != nil {
						tracked[obj] = &phase{}
					}
				}
			}
		case *ast.CallExpr:
			sel, ok := n.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			id, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}
			st, ok := tracked[objectOf(pass, id)]
			if !ok {
				return true
			}
			line := pass.Fset.Position(n.Pos()).Line

			switch sel.Sel.Name {
			case "Connect":
				st.connected = true
			case "Fetch":
				if !st.connected && !ignored[line] {
					pass.Reportf(n.Pos(), "Fetch called on %s before Connect", id.Name)
				}
				st.fetched = true
			case "Display":
				if !st.fetched && !ignored[line] {
					pass.Reportf(n.Pos(), "Display called on %s before Fetch", id.Name)
				}
			case "Close":
				st.connected = false
			}
		}
		return true
	})
}

func objectOf(pass *analysis.Pass, id *ast.Ident) types.Object {
	if obj := pass.TypesInfo.Defs[id]; obj != nil {
		return obj
	}
	return pass.TypesInfo.Uses[id]
}

// isCheckedNew reports whether expr is a call to New from a checked monitor package.
func isCheckedNew(pass *analysis.Pass, expr ast.Expr) bool {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "New" {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return strings.HasSuffix(fn.Pkg().Path(), checkedPkgSuffix)
}

func ignoredLines(pass *analysis.Pass, f *ast.File) map[int]bool {
	lines := make(map[int]bool)
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if strings.Contains(c.Text, "phaseorder:ignore") {
				lines[pass.Fset.Position(c.Pos()).Line] = true
			}
		}
	}
	return lines
}

func isGenerated(f *ast.File) bool {
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if strings.Contains(c.Text, "Code generated") && strings.Contains(c.Text, "DO NOT EDIT") {
				return true
			}
		}
	}
	return false
}

func importsTesting(f *ast.File) bool {
	for _, im := range f.Imports {
		if p, _ := strconv.Unquote(im.Path.Value); p == "testing" {
			return true
		}
	}
	return false
}
