package evaluator

import (
	"errors"
	"strings"
	"testing"

	"github.com/vexlang/vex/internal/parser"
)

// stubEngine answers a fixed catalog of operations.
type stubEngine struct {
	ops map[string]func(args []Object) (Object, error)
}

func (s *stubEngine) Has(name string) bool {
	_, ok := s.ops[name]
	return ok
}

func (s *stubEngine) Call(name string, args []Object) (Object, error) {
	op, ok := s.ops[name]
	if !ok {
		return nil, errors.New("unknown operation: " + name)
	}
	return op(args)
}

// stubSpecialist records calls and replies with a canned result or error.
type stubSpecialist struct {
	module   string
	function string
	args     []Object
	result   Object
	err      error
}

func (s *stubSpecialist) Call(module, function string, args []Object) (Object, error) {
	s.module, s.function, s.args = module, function, args
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testEval(t *testing.T, source string) Object {
	t.Helper()
	return testEvalWith(t, source, nil, nil)
}

func testEvalWith(t *testing.T, source string, eng Engine, spec Specialist) Object {
	t.Helper()
	program, perr := parser.Parse(source)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	e := New(eng, spec)
	return e.Eval(program, NewEnvironment())
}

func expectInteger(t *testing.T, obj Object, expected int64) {
	t.Helper()
	result, ok := obj.(*Integer)
	if !ok {
		t.Fatalf("object is not Integer: %T (%+v)", obj, obj)
	}
	if result.Value != expected {
		t.Errorf("expected %d, got %d", expected, result.Value)
	}
}

func expectFloat(t *testing.T, obj Object, expected float64) {
	t.Helper()
	result, ok := obj.(*Float)
	if !ok {
		t.Fatalf("object is not Float: %T (%+v)", obj, obj)
	}
	if result.Value != expected {
		t.Errorf("expected %g, got %g", expected, result.Value)
	}
}

func expectBoolean(t *testing.T, obj Object, expected bool) {
	t.Helper()
	result, ok := obj.(*Boolean)
	if !ok {
		t.Fatalf("object is not Boolean: %T (%+v)", obj, obj)
	}
	if result.Value != expected {
		t.Errorf("expected %t, got %t", expected, result.Value)
	}
}

func expectError(t *testing.T, obj Object, message string) *Error {
	t.Helper()
	result, ok := obj.(*Error)
	if !ok {
		t.Fatalf("object is not Error: %T (%+v)", obj, obj)
	}
	if !strings.Contains(result.Message, message) {
		t.Errorf("expected error containing %q, got %q", message, result.Message)
	}
	return result
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"-5", -5},
		{"2 + 3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"7 - 10", -3},
		{"-2 * -3", 6},
	}
	for _, tt := range tests {
		expectInteger(t, testEval(t, tt.input), tt.expected)
	}
}

func TestFloatPromotion(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"2.5", 2.5},
		{"-2.5", -2.5},
		{"1 + 2.5", 3.5},
		{"2.5 * 2", 5.0},
		{"10 / 4", 2.5},
		{"10 / 2", 5.0},
		{"9.0 / 3", 3.0},
	}
	for _, tt := range tests {
		expectFloat(t, testEval(t, tt.input), tt.expected)
	}
}

func TestDivisionAlwaysFloat(t *testing.T) {
	if _, ok := testEval(t, "10 / 2").(*Float); !ok {
		t.Fatalf("integer division must produce a Float")
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, input := range []string{"10 / 0", "10.0 / 0", "10 / 0.0"} {
		err := expectError(t, testEval(t, input), "division by zero")
		if err.Line == 0 {
			t.Errorf("%q: expected located error", input)
		}
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"1 == 1.0", true},
		{"1 != 1", false},
		{"1.5 == 1.5", true},
		{`"abc" == "abc"`, true},
		{`"abc" < "abd"`, true},
		{"true == true", true},
		{"[1, 2] == [1, 2]", true},
		{"[1, 2] == [1, 3]", false},
		{"[1, 2.0] == [1.0, 2]", true},
	}
	for _, tt := range tests {
		expectBoolean(t, testEval(t, tt.input), tt.expected)
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true && true", true},
		{"true && false", false},
		{"false || true", true},
		{"false || false", false},
		{"!true", false},
	}
	for _, tt := range tests {
		expectBoolean(t, testEval(t, tt.input), tt.expected)
	}
}

func TestLogicalShortCircuit(t *testing.T) {
	// The right operand would divide by zero if it were evaluated.
	expectBoolean(t, testEval(t, "false && 10 / 0 == 1"), false)
	expectBoolean(t, testEval(t, "true || 10 / 0 == 1"), true)
}

func TestLogicalRequiresBooleans(t *testing.T) {
	expectError(t, testEval(t, "1 && true"), "requires booleans")
	expectError(t, testEval(t, "!5"), "operator ! requires a boolean, got INTEGER")
}

func TestStringConcat(t *testing.T) {
	result, ok := testEval(t, `"foo" + "bar"`).(*String)
	if !ok {
		t.Fatalf("object is not String")
	}
	if result.Value != "foobar" {
		t.Errorf("got %q", result.Value)
	}
}

func TestTypeMismatch(t *testing.T) {
	expectError(t, testEval(t, `1 + "one"`), "type mismatch")
	expectError(t, testEval(t, `"a" - "b"`), "unknown operator")
}

func TestLetBindingAndShadowing(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let x = 5\nx", 5},
		{"let x = 5\nlet y = x + 1\ny", 6},
		{"let x = 5\nlet x = 10\nx", 10},
		{"let x = 5\nlet x = x * 2\nx", 10},
	}
	for _, tt := range tests {
		expectInteger(t, testEval(t, tt.input), tt.expected)
	}
}

func TestUndefinedVariable(t *testing.T) {
	err := expectError(t, testEval(t, "ghost"), "undefined variable: ghost")
	if err.Line != 1 || err.Column != 1 {
		t.Errorf("expected 1:1, got %d:%d", err.Line, err.Column)
	}
}

func TestIfExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected Object
	}{
		{"if true: 10 else: 20", &Integer{Value: 10}},
		{"if false: 10 else: 20", &Integer{Value: 20}},
		{"if 1 < 2: 10", &Integer{Value: 10}},
		{"if 1 > 2: 10", VOID},
	}
	for _, tt := range tests {
		got := testEval(t, tt.input)
		if !objectsEqual(got, tt.expected) {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected.Inspect(), got.Inspect())
		}
	}
}

func TestIfConditionMustBeBoolean(t *testing.T) {
	expectError(t, testEval(t, "if 1: 2"), "if condition must be a boolean, got INTEGER")
}

func TestEmptyProgramIsVoid(t *testing.T) {
	for _, input := range []string{"", "# just a comment\n"} {
		if got := testEval(t, input); got != VOID {
			t.Errorf("%q: expected void, got %s", input, got.Inspect())
		}
	}
}

func TestFunctionCall(t *testing.T) {
	source := `
fn add(a: Int, b: Int) -> Int: a + b
add(2, 3)
`
	expectInteger(t, testEval(t, source), 5)
}

func TestFunctionHoisting(t *testing.T) {
	// Call site appears before the declaration.
	source := `
let result = double(21)
fn double(n: Int) -> Int: n * 2
result
`
	expectInteger(t, testEval(t, source), 42)
}

func TestRecursion(t *testing.T) {
	source := `
fn factorial(n: Int) -> Int: if n <= 1: 1 else: n * factorial(n - 1)
factorial(5)
`
	expectInteger(t, testEval(t, source), 120)
}

func TestFunctionArityError(t *testing.T) {
	source := `
fn add(a: Int, b: Int) -> Int: a + b
add(1)
`
	expectError(t, testEval(t, source), "Function add expects 2 arguments, got 1")
}

func TestFunctionScopeIsolation(t *testing.T) {
	// Bodies see parameters only, never outer bindings.
	source := `
let secret = 99
fn leak() -> Int: secret
leak()
`
	expectError(t, testEval(t, source), "undefined variable: secret")
}

func TestParameterShadowsNothing(t *testing.T) {
	source := `
let n = 1
fn id(n: Int) -> Int: n
id(7) + n
`
	expectInteger(t, testEval(t, source), 8)
}

func TestCallDepthLimit(t *testing.T) {
	source := `
fn loop(n: Int) -> Int: loop(n + 1)
loop(0)
`
	expectError(t, testEval(t, source), "call depth limit exceeded in loop")
}

func TestUndefinedFunction(t *testing.T) {
	expectError(t, testEval(t, "missing(1, 2)"), "undefined function: missing")
}

func TestArrayLiteralAndIndex(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"[1, 2, 3][0]", 1},
		{"[1, 2, 3][2]", 3},
		{"let xs = [10, 20]\nxs[1]", 20},
		{"[[1, 2], [3, 4]][1][0]", 3},
	}
	for _, tt := range tests {
		expectInteger(t, testEval(t, tt.input), tt.expected)
	}
}

func TestIndexOutOfBounds(t *testing.T) {
	expectError(t, testEval(t, "[1, 2][5]"), "index out of bounds: 5 (length 2)")
	expectError(t, testEval(t, "[1, 2][-1]"), "index out of bounds: -1 (length 2)")
}

func TestBlockExpression(t *testing.T) {
	source := `
let x = {
	let a = 2
	let b = 3
	a * b
}
x
`
	expectInteger(t, testEval(t, source), 6)
}

func TestMatchLiteralsAndWildcard(t *testing.T) {
	source := `
match 5 {
	1 => "one",
	5 => "five",
	_ => "many"
}
`
	result, ok := testEval(t, source).(*String)
	if !ok {
		t.Fatalf("object is not String")
	}
	if result.Value != "five" {
		t.Errorf("got %q", result.Value)
	}
}

func TestMatchArrayDestructuring(t *testing.T) {
	source := `
match [1, 2, 3] {
	[a, b, c] => a + b + c,
	_ => 0
}
`
	expectInteger(t, testEval(t, source), 6)
}

func TestMatchGuard(t *testing.T) {
	source := `
fn sign(n: Int) -> Int: match n {
	x if x > 0 => 1,
	x if x < 0 => -1,
	_ => 0
}
sign(-7)
`
	expectInteger(t, testEval(t, source), -1)
}

func TestMatchFirstClauseWins(t *testing.T) {
	source := `
match 1 {
	x => 10,
	1 => 20
}
`
	expectInteger(t, testEval(t, source), 10)
}

func TestMatchExhaustionError(t *testing.T) {
	expectError(t, testEval(t, "match 9 { 1 => 2 }"), "no pattern matched value 9")
}

func TestMatchBindingDoesNotLeak(t *testing.T) {
	source := `
let r = match 5 { x => x * 2 }
x
`
	expectError(t, testEval(t, source), "undefined variable: x")
}

func TestEngineDispatch(t *testing.T) {
	eng := &stubEngine{ops: map[string]func(args []Object) (Object, error){
		"sum": func(args []Object) (Object, error) {
			arr, ok := args[0].(*Array)
			if !ok {
				return nil, errors.New("sum expects an array")
			}
			var total int64
			for _, el := range arr.Elements {
				total += el.(*Integer).Value
			}
			return &Integer{Value: total}, nil
		},
	}}
	expectInteger(t, testEvalWith(t, "sum([1, 2, 3])", eng, nil), 6)
}

func TestEngineErrorSurfacesAsRuntimeError(t *testing.T) {
	eng := &stubEngine{ops: map[string]func(args []Object) (Object, error){
		"sum": func(args []Object) (Object, error) {
			return nil, errors.New("sum expects an array")
		},
	}}
	expectError(t, testEvalWith(t, "sum(1)", eng, nil), "sum expects an array")
}

func TestUserFunctionShadowsEngineOp(t *testing.T) {
	eng := &stubEngine{ops: map[string]func(args []Object) (Object, error){
		"sum": func(args []Object) (Object, error) {
			return &Integer{Value: -1}, nil
		},
	}}
	source := `
fn sum(a: Int) -> Int: a + 100
sum(1)
`
	expectInteger(t, testEvalWith(t, source, eng, nil), 101)
}

func TestLibCallSuccess(t *testing.T) {
	spec := &stubSpecialist{result: &Float{Value: 3.14}}
	result, ok := testEvalWith(t, `lib("math", "pi")`, nil, spec).(*Array)
	if !ok {
		t.Fatalf("lib result is not Array")
	}
	if len(result.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(result.Elements))
	}
	tag, ok := result.Elements[0].(*String)
	if !ok || tag.Value != "ok" {
		t.Fatalf("expected ok tag, got %s", result.Elements[0].Inspect())
	}
	expectFloat(t, result.Elements[1], 3.14)
	if spec.module != "math" || spec.function != "pi" {
		t.Errorf("specialist saw %s.%s", spec.module, spec.function)
	}
}

func TestLibCallForwardsArguments(t *testing.T) {
	spec := &stubSpecialist{result: VOID}
	testEvalWith(t, `lib("stats", "mean", [1, 2, 3], 2.5)`, nil, spec)
	if len(spec.args) != 2 {
		t.Fatalf("expected 2 forwarded args, got %d", len(spec.args))
	}
	if _, ok := spec.args[0].(*Array); !ok {
		t.Errorf("first arg is %T", spec.args[0])
	}
	expectFloat(t, spec.args[1], 2.5)
}

func TestLibCallFailure(t *testing.T) {
	spec := &stubSpecialist{err: errors.New("module not found: nope")}
	result, ok := testEvalWith(t, `lib("nope", "f")`, nil, spec).(*Array)
	if !ok {
		t.Fatalf("lib result is not Array")
	}
	tag := result.Elements[0].(*String)
	if tag.Value != "error" {
		t.Fatalf("expected error tag, got %q", tag.Value)
	}
	reason := result.Elements[1].(*String)
	if !strings.Contains(reason.Value, "module not found") {
		t.Errorf("got reason %q", reason.Value)
	}
}

func TestLibCallArgumentValidation(t *testing.T) {
	spec := &stubSpecialist{result: VOID}
	expectError(t, testEvalWith(t, `lib(1, "f")`, nil, spec), "lib module name must be a string, got INTEGER")
	expectError(t, testEvalWith(t, `lib("m", 2)`, nil, spec), "lib function name must be a string, got INTEGER")
}

func TestLibCallWithoutSpecialist(t *testing.T) {
	expectError(t, testEval(t, `lib("math", "pi")`), "no library specialist attached")
}

func TestInspect(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"42", "42"},
		{"4.0", "4.0"},
		{"8 / 2", "4.0"},
		{"2.5", "2.5"},
		{"true", "true"},
		{`"hi"`, `"hi"`},
		{`[1, 2.0, "x"]`, `[1, 2.0, "x"]`},
		{"if false: 1", "void"},
	}
	for _, tt := range tests {
		if got := testEval(t, tt.input).Inspect(); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}
