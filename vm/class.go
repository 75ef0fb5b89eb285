package vm

import "sync"

// ---------------------------------------------------------------------------
// Class: method dictionaries for both sides
// ---------------------------------------------------------------------------

// Class groups compiled methods under a name. Instance-side methods take a
// receiver; class-side methods do not and are the only ones eligible for
// native callbacks.
type Class struct {
	Name      string
	Namespace string

	mu           sync.RWMutex
	methods      map[int]*CompiledMethod // selector ID -> instance-side method
	classMethods map[int]*CompiledMethod // selector ID -> class-side method
}

// NewClass creates an empty class.
func NewClass(name string) *Class {
	return &Class{
		Name:         name,
		methods:      make(map[int]*CompiledMethod),
		classMethods: make(map[int]*CompiledMethod),
	}
}

// NewClassInNamespace creates an empty class inside a namespace.
func NewClassInNamespace(namespace, name string) *Class {
	c := NewClass(name)
	c.Namespace = namespace
	return c
}

// AddMethod installs an instance-side method under name, replacing any
// previous definition. The method's class and selector are set.
func (c *Class) AddMethod(selectors *SelectorTable, name string, m *CompiledMethod) {
	c.install(selectors, name, m, false)
}

// AddClassMethod installs a class-side method under name.
func (c *Class) AddClassMethod(selectors *SelectorTable, name string, m *CompiledMethod) {
	c.install(selectors, name, m, true)
}

func (c *Class) install(selectors *SelectorTable, name string, m *CompiledMethod, classSide bool) {
	sel := selectors.Intern(name)
	m.name = name
	m.class = c
	m.selector = sel
	m.IsClassMethod = classSide

	c.mu.Lock()
	defer c.mu.Unlock()
	if classSide {
		c.classMethods[sel] = m
	} else {
		c.methods[sel] = m
	}
}

// LookupMethod returns the instance-side method for name, or nil.
func (c *Class) LookupMethod(selectors *SelectorTable, name string) *CompiledMethod {
	sel := selectors.Lookup(name)
	if sel < 0 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.methods[sel]
}

// LookupClassMethod returns the class-side method for name, or nil.
func (c *Class) LookupClassMethod(selectors *SelectorTable, name string) *CompiledMethod {
	sel := selectors.Lookup(name)
	if sel < 0 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.classMethods[sel]
}

// ClassMethods returns the class-side methods in no particular order.
func (c *Class) ClassMethods() []*CompiledMethod {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*CompiledMethod, 0, len(c.classMethods))
	for _, m := range c.classMethods {
		out = append(out, m)
	}
	return out
}

// ---------------------------------------------------------------------------
// Full qualified name helpers
// ---------------------------------------------------------------------------

// FullName returns the fully qualified class name (namespace::name or just name).
func (c *Class) FullName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "::" + c.Name
}

// String implements the Stringer interface.
func (c *Class) String() string {
	return c.FullName()
}
