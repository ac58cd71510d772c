package keyformat

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Imported keys stay inside their Handle: no function or method in this package may
// hand the scalar back out.
func TestArchitecture_NoPrivateKeyExtraction(t *testing.T) {
	forbidden := map[string]struct{}{
		"ExportPrivateKey": {},
		"PrivateKey":       {},
		"PrivateKeyBytes":  {},
		"RawPrivateKey":    {},
		"Scalar":           {},
		"ExportPKCS8":      {},
	}

	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve current test file path")
	}
	dir := filepath.Dir(currentFile)
	files, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		t.Fatalf("glob files: %v", err)
	}

	fset := token.NewFileSet()
	var violations []string
	for _, file := range files {
		base := filepath.Base(file)
		if strings.HasSuffix(base, "_test.go") {
			continue
		}
		node, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse file %s: %v", file, err)
		}
		ast.Inspect(node, func(n ast.Node) bool {
			var name *ast.Ident
			switch v := n.(type) {
			case *ast.FuncDecl:
				name = v.Name
			case *ast.Field:
				if _, isFunc := v.Type.(*ast.FuncType); isFunc && len(v.Names) > 0 {
					name = v.Names[0]
				}
			}
			if name == nil {
				return true
			}
			if _, isForbidden := forbidden[name.Name]; isForbidden {
				pos := fset.Position(name.Pos())
				violations = append(violations, fmt.Sprintf("%s:%d exposes %s", base, pos.Line, name.Name))
			}
			return true
		})
	}

	if len(violations) == 0 {
		return
	}
	t.Fatalf("private key extraction is forbidden in internal/keyformat:\n- %s", strings.Join(violations, "\n- "))
}
