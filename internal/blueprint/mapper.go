// Package blueprint holds the template-side graph logic: the identity mapper
// used while cloning a template, graph validation, and template documents.
package blueprint

import "github.com/google/uuid"

// IDFunc mints a fresh instance identity.
type IDFunc func() string

// Table maps blueprint identities of one namespace to instance identities.
// It is write-once per key and lives for a single instantiation run.
type Table struct {
	newID IDFunc
	ids   map[string]string
}

func newTable(gen IDFunc) *Table {
	return &Table{newID: gen, ids: make(map[string]string)}
}

// Allocate returns the instance id for blueprintID, minting one on first use.
// Repeated calls with the same blueprint id return the same instance id.
func (t *Table) Allocate(blueprintID string) string {
	if id, ok := t.ids[blueprintID]; ok {
		return id
	}
	id := t.newID()
	t.ids[blueprintID] = id
	return id
}

// Lookup returns the instance id for blueprintID without allocating.
func (t *Table) Lookup(blueprintID string) (string, bool) {
	id, ok := t.ids[blueprintID]
	return id, ok
}

// Len returns the number of allocated identities.
func (t *Table) Len() int { return len(t.ids) }

// Mapper keeps modules and tasks in separate tables so the two identity
// spaces can never collide.
type Mapper struct {
	Modules *Table
	Tasks   *Table
}

// NewMapper returns a mapper minting ids with gen, or random UUIDs when gen is nil.
func NewMapper(gen IDFunc) *Mapper {
	if gen == nil {
		gen = uuid.NewString
	}
	return &Mapper{Modules: newTable(gen), Tasks: newTable(gen)}
}
