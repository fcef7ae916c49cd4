package op

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/nickyhof/TableDB/core"
)

// Database owns an ordered set of tables. All access goes through its
// methods, which serialize writers behind a single lock.
//
// Methods taking a reference string ("2" or "users") resolve it and act on
// the table inside one critical section, so a concurrent DeleteTable cannot
// shift the target between the two.
type Database struct {
	name   string
	mu     sync.RWMutex
	tables []*core.Table
}

func NewDatabase(name string) *Database {
	return &Database{name: name}
}

func (d *Database) Name() string {
	return d.name
}

// table returns the table at index. Callers must hold d.mu.
func (d *Database) table(index int) (*core.Table, error) {
	if index < 0 || index >= len(d.tables) {
		return nil, fmt.Errorf("table %d: %w", index, core.ErrIndexOutOfRange)
	}
	return d.tables[index], nil
}

func (d *Database) indexOf(name string) int {
	return slices.IndexFunc(d.tables, func(t *core.Table) bool { return t.Name() == name })
}

// resolve maps a table reference to its index. Callers must hold d.mu.
func (d *Database) resolve(ref string) (int, error) {
	if index, err := strconv.Atoi(ref); err == nil {
		if _, err := d.table(index); err != nil {
			return -1, err
		}
		return index, nil
	}
	if index := d.indexOf(ref); index != -1 {
		return index, nil
	}
	return -1, fmt.Errorf("table %s does not exist: %w", ref, core.ErrIndexOutOfRange)
}

// AddTable creates an empty table and returns its index.
func (d *Database) AddTable(name string) (int, error) {
	table, err := core.NewTable(name)
	if err != nil {
		return -1, err
	}
	return d.AttachTable(table)
}

// AttachTable appends a fully built table and returns its index. The
// database takes ownership of table.
func (d *Database) AttachTable(table *core.Table) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexOf(table.Name()) != -1 {
		return -1, fmt.Errorf("table %s already exists: %w", table.Name(), core.ErrInvalidArgument)
	}
	d.tables = append(d.tables, table)
	return len(d.tables) - 1, nil
}

func (d *Database) DeleteTable(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.deleteTable(index)
}

// DropTable resolves ref and deletes that table.
func (d *Database) DropTable(ref string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	index, err := d.resolve(ref)
	if err != nil {
		return err
	}
	return d.deleteTable(index)
}

func (d *Database) deleteTable(index int) error {
	if _, err := d.table(index); err != nil {
		return err
	}
	d.tables = slices.Delete(d.tables, index, index+1)
	return nil
}

// CopyTable deep-copies the table at index under newName and returns the
// index of the copy.
func (d *Database) CopyTable(index int, newName string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.copyTable(index, newName)
}

// CloneTable resolves ref and deep-copies that table under newName.
func (d *Database) CloneTable(ref, newName string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	index, err := d.resolve(ref)
	if err != nil {
		return -1, err
	}
	return d.copyTable(index, newName)
}

func (d *Database) copyTable(index int, newName string) (int, error) {
	if strings.TrimSpace(newName) == "" {
		return -1, fmt.Errorf("table name is empty: %w", core.ErrInvalidArgument)
	}
	source, err := d.table(index)
	if err != nil {
		return -1, err
	}
	if d.indexOf(newName) != -1 {
		return -1, fmt.Errorf("table %s already exists: %w", newName, core.ErrInvalidArgument)
	}
	d.tables = append(d.tables, source.CopyAs(newName))
	return len(d.tables) - 1, nil
}

func (d *Database) TableNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, len(d.tables))
	for i, table := range d.tables {
		names[i] = table.Name()
	}
	return names
}

// Snapshot returns a deep copy of the table at index.
func (d *Database) Snapshot(index int) (*core.Table, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	table, err := d.table(index)
	if err != nil {
		return nil, err
	}
	return table.Copy(), nil
}

// Snapshots returns a deep copy of every table, in order, taken under one lock.
func (d *Database) Snapshots() []*core.Table {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tables := make([]*core.Table, len(d.tables))
	for i, table := range d.tables {
		tables[i] = table.Copy()
	}
	return tables
}

// Update resolves ref and runs fn on the live table under the write lock.
// fn must not retain table after it returns.
func (d *Database) Update(ref string, fn func(table *core.Table) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	index, err := d.resolve(ref)
	if err != nil {
		return err
	}
	return fn(d.tables[index])
}

// View resolves ref and runs fn on the live table under the read lock.
// fn must not modify or retain table.
func (d *Database) View(ref string, fn func(table *core.Table) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	index, err := d.resolve(ref)
	if err != nil {
		return err
	}
	return fn(d.tables[index])
}

// update runs fn on the table at index under the write lock.
func (d *Database) update(index int, fn func(table *core.Table) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	table, err := d.table(index)
	if err != nil {
		return err
	}
	return fn(table)
}

// LookupTable resolves a table reference given either as an index or as a
// name. The index is only meaningful until the next structural change; use
// Update or View to act on the table.
func (d *Database) LookupTable(ref string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.resolve(ref)
}

// LookupColumn resolves a column reference given either as an index or as a name.
func (d *Database) LookupColumn(tableIndex int, ref string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	table, err := d.table(tableIndex)
	if err != nil {
		return -1, err
	}
	return ResolveColumn(table, ref)
}

// ResolveColumn maps a column reference on table to its index.
func ResolveColumn(table *core.Table, ref string) (int, error) {
	if index, err := strconv.Atoi(ref); err == nil {
		if _, err := table.Column(index); err != nil {
			return -1, err
		}
		return index, nil
	}
	if index := table.ColumnIndex(ref); index != -1 {
		return index, nil
	}
	return -1, fmt.Errorf("column %s does not exist in %s: %w", ref, table.Name(), core.ErrIndexOutOfRange)
}
