package source

import (
	"context"
	"path"
	"sync"
)

// Memory is a Source backed by a map of path to content. Directories are
// derived from the file paths. Failures can be injected per path, which
// makes it the stand-in for remote sources in tests and previews.
type Memory struct {
	mu       sync.RWMutex
	root     string
	files    map[string][]byte
	extraDir []string
	failures map[string]error
	listErr  error
}

// NewMemory returns a source over files rooted at docsRoot.
func NewMemory(docsRoot string, files map[string]string) *Memory {
	m := &Memory{root: docsRoot, files: make(map[string][]byte, len(files)), failures: map[string]error{}}
	for p, c := range files {
		m.files[p] = []byte(c)
	}
	return m
}

// Put adds or replaces a file.
func (m *Memory) Put(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = []byte(content)
}

// AddDir registers a directory that holds no files.
func (m *Memory) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extraDir = append(m.extraDir, p)
}

// FailOn makes GetRawContent return err for p.
func (m *Memory) FailOn(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[p] = err
}

// FailListing makes both listing calls return err.
func (m *Memory) FailListing(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

func (m *Memory) entries() []Entry {
	seen := map[string]bool{}
	var out []Entry
	addDir := func(d string) {
		for d != "." && d != "/" && d != "" && !seen[d] {
			seen[d] = true
			out = append(out, Entry{Path: d, IsDir: true})
			d = path.Dir(d)
		}
	}
	for p := range m.files {
		out = append(out, Entry{Path: p})
		addDir(path.Dir(p))
	}
	for _, d := range m.extraDir {
		addDir(d)
	}
	return out
}

func (m *Memory) ListDocumentPaths(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	docs, _ := Filter(m.entries(), m.root)
	return docs, nil
}

func (m *Memory) ListDirectories(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	_, dirs := Filter(m.entries(), m.root)
	return dirs, nil
}

func (m *Memory) GetRawContent(_ context.Context, p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.failures[p]; ok {
		return nil, err
	}
	c, ok := m.files[p]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), c...), nil
}

func (m *Memory) Name() string { return "memory" }
