// Package registry holds the table metadata of every model in use.
//
// Tables are kept in registration order, and a table may only be registered
// after every table its foreign keys reference. Registration order is therefore
// a valid creation order, and its reverse a valid drop order.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/LadyAlena/sql-homeworks-6/pkg/schema"
)

// ErrUnregisteredReference is returned when a model references a table that
// has not been registered yet.
var ErrUnregisteredReference = errors.New("foreign key references an unregistered table")

// Registry maps model types and table names to parsed metadata. It is safe
// for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	parser *schema.Parser
	tables map[reflect.Type]*schema.TableMetadata
	names  map[string]*schema.TableMetadata
	order  []*schema.TableMetadata
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parser: schema.NewParser(),
		tables: make(map[reflect.Type]*schema.TableMetadata),
		names:  make(map[string]*schema.TableMetadata),
	}
}

// Register parses model and adds it. Registering the same type twice is a
// no-op; a second type claiming the same table name is an error.
func (r *Registry) Register(model any) error {
	_, err := r.register(model)
	return err
}

func (r *Registry) register(model any) (*schema.TableMetadata, error) {
	modelType := reflect.TypeOf(model)
	if modelType == nil {
		return nil, fmt.Errorf("model must be a struct, got nil")
	}
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if table, ok := r.tables[modelType]; ok {
		return table, nil
	}

	table, err := r.parser.Parse(modelType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", modelType.Name(), err)
	}
	if other, ok := r.names[table.Name]; ok {
		return nil, fmt.Errorf("table %s already registered by %s", table.Name, other.GoType)
	}
	for _, ref := range table.References() {
		if ref == table.Name {
			continue
		}
		if _, ok := r.names[ref]; !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnregisteredReference, table.Name, ref)
		}
	}

	r.tables[modelType] = table
	r.names[table.Name] = table
	r.order = append(r.order, table)
	return table, nil
}

// Get returns the metadata of a registered type.
func (r *Registry) Get(modelType reflect.Type) (*schema.TableMetadata, error) {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	table, ok := r.tables[modelType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("model type %s not registered", modelType.Name())
	}
	return table, nil
}

// GetByName returns the metadata of a registered table.
func (r *Registry) GetByName(tableName string) (*schema.TableMetadata, error) {
	r.mu.RLock()
	table, ok := r.names[tableName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("table %s not registered", tableName)
	}
	return table, nil
}

// GetOrRegister is Register that also returns the metadata.
func (r *Registry) GetOrRegister(model any) (*schema.TableMetadata, error) {
	return r.register(model)
}

// Tables returns the registered tables in creation order.
func (r *Registry) Tables() []*schema.TableMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// DropOrder returns the registered tables in an order safe for dropping:
// referencing tables before the tables they reference.
func (r *Registry) DropOrder() []*schema.TableMetadata {
	tables := r.Tables()
	slices.Reverse(tables)
	return tables
}

// Names returns the registered table names in creation order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	for i, table := range r.order {
		names[i] = table.Name
	}
	return names
}
