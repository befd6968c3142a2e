package model

// Layer is a unique-named collection of Methods keyed by name (spec.md
// §3). Methods are held in a plain map: the order they were added in is
// not kept. Methods within a Layer must have unique names; Layers across an
// engine must have unique names.
type Layer struct {
	Name    string
	Methods map[string]*Method
}

// NewLayer creates an empty Layer ready to receive Methods via AddMethod.
func NewLayer(name string) *Layer {
	return &Layer{
		Name:    name,
		Methods: make(map[string]*Method),
	}
}

// AddMethod registers a Method on this Layer. Returns false if a method
// with the same name is already registered (DuplicateMethod is the
// caller's responsibility to raise, since only the registry has enough
// context — layer name — to build that error).
func (l *Layer) AddMethod(m *Method) bool {
	if _, exists := l.Methods[m.Name]; exists {
		return false
	}
	l.Methods[m.Name] = m
	return true
}

// MethodNames returns the names of every Method registered on this Layer.
// Order is unspecified; it exists for error-message suggestion lists, not
// for execution ordering.
func (l *Layer) MethodNames() []string {
	names := make([]string, 0, len(l.Methods))
	for name := range l.Methods {
		names = append(names, name)
	}
	return names
}
