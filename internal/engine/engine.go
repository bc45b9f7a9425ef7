// Package engine implements the native compute engine: a fixed catalog of
// array, string, vector and matrix operations invoked by name from the
// evaluator. Operations are synchronous and CPU-bound; nothing here blocks.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vexlang/vex/internal/config"
	"github.com/vexlang/vex/internal/evaluator"
)

type opFunc func(args []evaluator.Object) (evaluator.Object, error)

// Engine dispatches catalog operations by name. The zero value is not
// usable; construct with New.
type Engine struct {
	catalog map[string]opFunc
}

func New() *Engine {
	e := &Engine{catalog: make(map[string]opFunc)}
	e.catalog[config.SumOpName] = opSum
	e.catalog[config.MeanOpName] = opMean
	e.catalog[config.MinOpName] = opMin
	e.catalog[config.MaxOpName] = opMax
	e.catalog[config.SortOpName] = opSort
	e.catalog[config.ReverseOpName] = opReverse
	e.catalog[config.LenOpName] = opLen
	e.catalog[config.DotOpName] = opDot
	e.catalog[config.MatmulOpName] = opMatmul
	e.catalog[config.TransposeOpName] = opTranspose
	e.catalog[config.ScaleOpName] = opScale
	e.catalog[config.UpperOpName] = opUpper
	e.catalog[config.LowerOpName] = opLower
	e.catalog[config.TrimOpName] = opTrim
	e.catalog[config.ConcatOpName] = opConcat
	return e
}

func (e *Engine) Has(name string) bool {
	_, ok := e.catalog[name]
	return ok
}

func (e *Engine) Call(name string, args []evaluator.Object) (evaluator.Object, error) {
	op, ok := e.catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", name)
	}
	return op(args)
}

// numericVector validates that args is a single array of numbers. The int
// slice is non-nil only when every element was an integer; all-integer
// inputs stay on int64 so values beyond 2^53 do not round through float64.
func numericVector(op string, args []evaluator.Object) ([]float64, []int64, error) {
	if len(args) != 1 {
		return nil, nil, fmt.Errorf("%s expects 1 argument, got %d", op, len(args))
	}
	arr, ok := args[0].(*evaluator.Array)
	if !ok {
		return nil, nil, fmt.Errorf("%s expects an array, got %s", op, args[0].Type())
	}
	floats := make([]float64, len(arr.Elements))
	ints := make([]int64, len(arr.Elements))
	allInt := true
	for i, el := range arr.Elements {
		switch v := el.(type) {
		case *evaluator.Integer:
			floats[i] = float64(v.Value)
			ints[i] = v.Value
		case *evaluator.Float:
			floats[i] = v.Value
			allInt = false
		default:
			return nil, nil, fmt.Errorf("%s expects numeric elements, got %s", op, el.Type())
		}
	}
	if !allInt {
		ints = nil
	}
	return floats, ints, nil
}

func opSum(args []evaluator.Object) (evaluator.Object, error) {
	floats, ints, err := numericVector("sum", args)
	if err != nil {
		return nil, err
	}
	if ints != nil {
		var total int64
		for _, v := range ints {
			total += v
		}
		return &evaluator.Integer{Value: total}, nil
	}
	total := 0.0
	for _, v := range floats {
		total += v
	}
	return &evaluator.Float{Value: total}, nil
}

// mean always produces a float: it divides.
func opMean(args []evaluator.Object) (evaluator.Object, error) {
	values, _, err := numericVector("mean", args)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("mean of empty array")
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return &evaluator.Float{Value: total / float64(len(values))}, nil
}

func opMin(args []evaluator.Object) (evaluator.Object, error) {
	floats, ints, err := numericVector("min", args)
	if err != nil {
		return nil, err
	}
	if len(floats) == 0 {
		return nil, fmt.Errorf("min of empty array")
	}
	if ints != nil {
		best := ints[0]
		for _, v := range ints[1:] {
			if v < best {
				best = v
			}
		}
		return &evaluator.Integer{Value: best}, nil
	}
	best := floats[0]
	for _, v := range floats[1:] {
		if v < best {
			best = v
		}
	}
	return &evaluator.Float{Value: best}, nil
}

func opMax(args []evaluator.Object) (evaluator.Object, error) {
	floats, ints, err := numericVector("max", args)
	if err != nil {
		return nil, err
	}
	if len(floats) == 0 {
		return nil, fmt.Errorf("max of empty array")
	}
	if ints != nil {
		best := ints[0]
		for _, v := range ints[1:] {
			if v > best {
				best = v
			}
		}
		return &evaluator.Integer{Value: best}, nil
	}
	best := floats[0]
	for _, v := range floats[1:] {
		if v > best {
			best = v
		}
	}
	return &evaluator.Float{Value: best}, nil
}

func opSort(args []evaluator.Object) (evaluator.Object, error) {
	floats, ints, err := numericVector("sort", args)
	if err != nil {
		return nil, err
	}
	if ints != nil {
		sorted := make([]int64, len(ints))
		copy(sorted, ints)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		elements := make([]evaluator.Object, len(sorted))
		for i, v := range sorted {
			elements[i] = &evaluator.Integer{Value: v}
		}
		return &evaluator.Array{Elements: elements}, nil
	}
	sorted := make([]float64, len(floats))
	copy(sorted, floats)
	sort.Float64s(sorted)
	elements := make([]evaluator.Object, len(sorted))
	for i, v := range sorted {
		elements[i] = &evaluator.Float{Value: v}
	}
	return &evaluator.Array{Elements: elements}, nil
}

func opReverse(args []evaluator.Object) (evaluator.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("reverse expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case *evaluator.Array:
		elements := make([]evaluator.Object, len(v.Elements))
		for i, el := range v.Elements {
			elements[len(v.Elements)-1-i] = el
		}
		return &evaluator.Array{Elements: elements}, nil
	case *evaluator.String:
		runes := []rune(v.Value)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return &evaluator.String{Value: string(runes)}, nil
	}
	return nil, fmt.Errorf("reverse expects an array or string, got %s", args[0].Type())
}

func opLen(args []evaluator.Object) (evaluator.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case *evaluator.Array:
		return &evaluator.Integer{Value: int64(len(v.Elements))}, nil
	case *evaluator.String:
		return &evaluator.Integer{Value: int64(len(v.Value))}, nil
	}
	return nil, fmt.Errorf("len expects an array or string, got %s", args[0].Type())
}

func opDot(args []evaluator.Object) (evaluator.Object, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("dot expects 2 arguments, got %d", len(args))
	}
	a, aInts, err := numericVector("dot", args[:1])
	if err != nil {
		return nil, err
	}
	b, bInts, err := numericVector("dot", args[1:])
	if err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("dot requires vectors of equal length, got %d and %d", len(a), len(b))
	}
	if aInts != nil && bInts != nil {
		var total int64
		for i := range aInts {
			total += aInts[i] * bInts[i]
		}
		return &evaluator.Integer{Value: total}, nil
	}
	total := 0.0
	for i := range a {
		total += a[i] * b[i]
	}
	return &evaluator.Float{Value: total}, nil
}

// numericMatrix validates a rectangular array of numeric arrays. As with
// numericVector, the int rows are non-nil only when every element was an
// integer.
func numericMatrix(op string, arg evaluator.Object) ([][]float64, [][]int64, error) {
	outer, ok := arg.(*evaluator.Array)
	if !ok {
		return nil, nil, fmt.Errorf("%s expects a matrix, got %s", op, arg.Type())
	}
	rows := make([][]float64, len(outer.Elements))
	intRows := make([][]int64, len(outer.Elements))
	allInt := true
	for i, rowObj := range outer.Elements {
		row, rowInts, err := numericVector(op, []evaluator.Object{rowObj})
		if err != nil {
			return nil, nil, err
		}
		if i > 0 && len(row) != len(rows[0]) {
			return nil, nil, fmt.Errorf("%s requires rectangular rows", op)
		}
		rows[i] = row
		intRows[i] = rowInts
		allInt = allInt && rowInts != nil
	}
	if !allInt {
		intRows = nil
	}
	return rows, intRows, nil
}

func floatMatrixObject(rows [][]float64) evaluator.Object {
	outer := make([]evaluator.Object, len(rows))
	for i, row := range rows {
		inner := make([]evaluator.Object, len(row))
		for j, v := range row {
			inner[j] = &evaluator.Float{Value: v}
		}
		outer[i] = &evaluator.Array{Elements: inner}
	}
	return &evaluator.Array{Elements: outer}
}

func intMatrixObject(rows [][]int64) evaluator.Object {
	outer := make([]evaluator.Object, len(rows))
	for i, row := range rows {
		inner := make([]evaluator.Object, len(row))
		for j, v := range row {
			inner[j] = &evaluator.Integer{Value: v}
		}
		outer[i] = &evaluator.Array{Elements: inner}
	}
	return &evaluator.Array{Elements: outer}
}

func opMatmul(args []evaluator.Object) (evaluator.Object, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("matmul expects 2 arguments, got %d", len(args))
	}
	a, aInts, err := numericMatrix("matmul", args[0])
	if err != nil {
		return nil, err
	}
	b, bInts, err := numericMatrix("matmul", args[1])
	if err != nil {
		return nil, err
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("matmul of empty matrix")
	}
	if len(a[0]) != len(b) {
		return nil, fmt.Errorf("matmul dimension mismatch: %dx%d and %dx%d",
			len(a), len(a[0]), len(b), len(b[0]))
	}
	if aInts != nil && bInts != nil {
		out := make([][]int64, len(aInts))
		for i := range aInts {
			out[i] = make([]int64, len(bInts[0]))
			for j := range bInts[0] {
				for k := range bInts {
					out[i][j] += aInts[i][k] * bInts[k][j]
				}
			}
		}
		return intMatrixObject(out), nil
	}
	out := make([][]float64, len(a))
	for i := range a {
		out[i] = make([]float64, len(b[0]))
		for j := range b[0] {
			for k := range b {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return floatMatrixObject(out), nil
}

func opTranspose(args []evaluator.Object) (evaluator.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("transpose expects 1 argument, got %d", len(args))
	}
	m, mInts, err := numericMatrix("transpose", args[0])
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return &evaluator.Array{Elements: []evaluator.Object{}}, nil
	}
	if mInts != nil {
		out := make([][]int64, len(mInts[0]))
		for j := range mInts[0] {
			out[j] = make([]int64, len(mInts))
			for i := range mInts {
				out[j][i] = mInts[i][j]
			}
		}
		return intMatrixObject(out), nil
	}
	out := make([][]float64, len(m[0]))
	for j := range m[0] {
		out[j] = make([]float64, len(m))
		for i := range m {
			out[j][i] = m[i][j]
		}
	}
	return floatMatrixObject(out), nil
}

func opScale(args []evaluator.Object) (evaluator.Object, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("scale expects 2 arguments, got %d", len(args))
	}
	floats, ints, err := numericVector("scale", args[:1])
	if err != nil {
		return nil, err
	}
	var factor float64
	switch f := args[1].(type) {
	case *evaluator.Integer:
		if ints != nil {
			elements := make([]evaluator.Object, len(ints))
			for i, v := range ints {
				elements[i] = &evaluator.Integer{Value: v * f.Value}
			}
			return &evaluator.Array{Elements: elements}, nil
		}
		factor = float64(f.Value)
	case *evaluator.Float:
		factor = f.Value
	default:
		return nil, fmt.Errorf("scale factor must be a number, got %s", args[1].Type())
	}
	elements := make([]evaluator.Object, len(floats))
	for i, v := range floats {
		elements[i] = &evaluator.Float{Value: v * factor}
	}
	return &evaluator.Array{Elements: elements}, nil
}

func stringArg(op string, args []evaluator.Object) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s expects 1 argument, got %d", op, len(args))
	}
	s, ok := args[0].(*evaluator.String)
	if !ok {
		return "", fmt.Errorf("%s expects a string, got %s", op, args[0].Type())
	}
	return s.Value, nil
}

func opUpper(args []evaluator.Object) (evaluator.Object, error) {
	s, err := stringArg("upper", args)
	if err != nil {
		return nil, err
	}
	return &evaluator.String{Value: strings.ToUpper(s)}, nil
}

func opLower(args []evaluator.Object) (evaluator.Object, error) {
	s, err := stringArg("lower", args)
	if err != nil {
		return nil, err
	}
	return &evaluator.String{Value: strings.ToLower(s)}, nil
}

func opTrim(args []evaluator.Object) (evaluator.Object, error) {
	s, err := stringArg("trim", args)
	if err != nil {
		return nil, err
	}
	return &evaluator.String{Value: strings.TrimSpace(s)}, nil
}

func opConcat(args []evaluator.Object) (evaluator.Object, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("concat expects at least 1 argument")
	}
	if _, ok := args[0].(*evaluator.String); ok {
		var b strings.Builder
		for _, arg := range args {
			s, ok := arg.(*evaluator.String)
			if !ok {
				return nil, fmt.Errorf("concat expects all strings, got %s", arg.Type())
			}
			b.WriteString(s.Value)
		}
		return &evaluator.String{Value: b.String()}, nil
	}
	var elements []evaluator.Object
	for _, arg := range args {
		arr, ok := arg.(*evaluator.Array)
		if !ok {
			return nil, fmt.Errorf("concat expects all arrays, got %s", arg.Type())
		}
		elements = append(elements, arr.Elements...)
	}
	return &evaluator.Array{Elements: elements}, nil
}
