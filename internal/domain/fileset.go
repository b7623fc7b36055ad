package domain

import "sort"

// FileMap is an insertion-ordered mapping of archive member names to source
// paths. Setting an existing name replaces the path but keeps the original
// position, so the later-discovered path wins deterministically.
type FileMap struct {
	names []string
	paths map[string]string
}

func (m *FileMap) Set(name, path string) {
	if m.paths == nil {
		m.paths = make(map[string]string)
	}
	if _, ok := m.paths[name]; !ok {
		m.names = append(m.names, name)
	}
	m.paths[name] = path
}

func (m *FileMap) Get(name string) (string, bool) {
	path, ok := m.paths[name]
	return path, ok
}

func (m *FileMap) Len() int {
	return len(m.names)
}

// Names returns the member names in first-discovery order.
func (m *FileMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// SortedNames returns the member names in lexical order.
func (m *FileMap) SortedNames() []string {
	out := m.Names()
	sort.Strings(out)
	return out
}

// FileSet holds everything the locator found for one correlation run.
type FileSet struct {
	Vex    string
	V2D    string
	Inputs FileMap
	Others FileMap
}

// Paths returns every source path in the set: vex, v2d, then inputs and
// others in discovery order.
func (f *FileSet) Paths() []string {
	paths := []string{f.Vex, f.V2D}
	for _, name := range f.Inputs.Names() {
		path, _ := f.Inputs.Get(name)
		paths = append(paths, path)
	}
	for _, name := range f.Others.Names() {
		path, _ := f.Others.Get(name)
		paths = append(paths, path)
	}
	return paths
}
