package evaluator

import (
	"fmt"

	"github.com/vexlang/vex/internal/ast"
)

func newErrorAt(node ast.Node, format string, args ...interface{}) *Error {
	err := &Error{Message: fmt.Sprintf(format, args...)}
	if node != nil {
		tok := node.GetToken()
		err.Line = tok.Line
		err.Column = tok.Column
	}
	return err
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}
