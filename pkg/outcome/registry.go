package outcome

import (
	"fmt"
	"sort"
)

// Registry maps test identifiers to test-case ids. Entries are declared up
// front alongside test registration; nothing is discovered at runtime.
type Registry struct {
	ids map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]string)}
}

// Register binds test to caseID. Re-registering the same pair is a no-op;
// binding a test to a second id is an error.
func (r *Registry) Register(test, caseID string) error {
	if test == "" || caseID == "" {
		return fmt.Errorf("register %q: test and case id are required", test)
	}
	if prev, ok := r.ids[test]; ok && prev != caseID {
		return fmt.Errorf("register %q: already bound to %s, cannot bind to %s", test, prev, caseID)
	}
	r.ids[test] = caseID
	return nil
}

// MustRegister is Register for static tables; it panics on conflict.
func (r *Registry) MustRegister(test, caseID string) *Registry {
	if err := r.Register(test, caseID); err != nil {
		panic(err)
	}
	return r
}

// Merge registers every entry of m.
func (r *Registry) Merge(m map[string]string) error {
	for _, test := range sortedKeys(m) {
		if err := r.Register(test, m[test]); err != nil {
			return err
		}
	}
	return nil
}

// CaseID looks up the id bound to test.
func (r *Registry) CaseID(test string) (string, bool) {
	if r == nil {
		return "", false
	}
	id, ok := r.ids[test]
	return id, ok
}

// Resolve applies tag precedence: an explicit id wins, then the registry.
func (r *Registry) Resolve(test, explicit string) string {
	if explicit != "" {
		return explicit
	}
	id, _ := r.CaseID(test)
	return id
}

// Tests returns the registered test identifiers, sorted.
func (r *Registry) Tests() []string {
	if r == nil {
		return nil
	}
	return sortedKeys(r.ids)
}

// Len returns the number of registered tests.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
