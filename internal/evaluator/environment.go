package evaluator

// Environment is a flat name-to-value store. There is deliberately no outer
// pointer: a function body can only see its own parameters, so closures are
// impossible by construction rather than by runtime check.
type Environment struct {
	store map[string]Object
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	return obj, ok
}

func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}
