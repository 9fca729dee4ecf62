// Package memory is an in-process parameter server. Parameters are kept as a
// flat map from fully-qualified name to scalar or sequence value; mappings
// written to a name are flattened into the names below it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-paramform/pkg/names"
	"github.com/goliatone/go-paramform/pkg/paramservice"
	"github.com/goliatone/go-paramform/pkg/paramservice/codec"
)

// Store implements paramservice.Service. The endpoint argument of every
// operation is ignored. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

var _ paramservice.Service = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// Set writes value under name. Mappings replace the whole subtree below name.
func (s *Store) Set(name string, value any) error {
	key, err := canonicalName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, codec.Normalize(value))
	return nil
}

// Seed writes every entry of values, relative to the global namespace.
func (s *Store) Seed(values map[string]any) error {
	for name, value := range values {
		if err := s.Set(names.Join(names.Sep, name), value); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under name. A namespace resolves to the
// nested mapping of everything below it.
func (s *Store) Get(name string) (any, bool) {
	key, err := canonicalName(name)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(key)
}

// Delete removes name and everything below it.
func (s *Store) Delete(name string) {
	key, err := canonicalName(name)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(key)
}

// Names returns every stored name in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.values))
	for key := range s.values {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (s *Store) ListParameters(ctx context.Context, _ string, namespace string) (paramservice.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return paramservice.ListResult{}, err
	}
	var out []string
	for _, name := range s.Names() {
		if names.InNamespace(namespace, name) {
			out = append(out, name)
		}
	}
	if out == nil {
		out = []string{}
	}
	return paramservice.ListResult{Code: paramservice.CodeSuccess, Message: "", Names: out}, nil
}

func (s *Store) ParameterValues(ctx context.Context, _ string, requested []string) (paramservice.ValuesResult, error) {
	if err := ctx.Err(); err != nil {
		return paramservice.ValuesResult{}, err
	}
	res := paramservice.ValuesResult{
		Code:   paramservice.CodeSuccess,
		Params: make(map[string]paramservice.ParamResult, len(requested)),
	}
	for _, name := range requested {
		value, ok := s.Get(name)
		if !ok {
			res.Params[name] = paramservice.ParamResult{
				Code:    paramservice.CodeError,
				Message: fmt.Sprintf("Parameter [%s] is not set", name),
			}
			continue
		}
		res.Params[name] = paramservice.ParamResult{Code: paramservice.CodeSuccess, Value: value}
	}
	return res, nil
}

func (s *Store) DeliverParameters(ctx context.Context, _ string, params map[string]any) (paramservice.DeliveryResult, error) {
	if err := ctx.Err(); err != nil {
		return paramservice.DeliveryResult{}, err
	}
	res := paramservice.DeliveryResult{
		Code:   paramservice.CodeSuccess,
		Params: make(map[string]paramservice.ParamResult, len(params)),
	}
	for name, value := range params {
		if err := s.Set(name, value); err != nil {
			res.Params[name] = paramservice.ParamResult{Code: paramservice.CodeError, Message: err.Error()}
			continue
		}
		res.Params[name] = paramservice.ParamResult{Code: paramservice.CodeSuccess}
	}
	return res, nil
}

func canonicalName(name string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(name), names.Sep)
	if trimmed == "" {
		return "", fmt.Errorf("memory: invalid parameter name %q", name)
	}
	return names.Sep + trimmed, nil
}

func (s *Store) setLocked(key string, value any) {
	s.deleteLocked(key)
	record, ok := value.(map[string]any)
	if !ok {
		s.values[key] = value
		return
	}
	for child, item := range record {
		if child == "" {
			continue
		}
		s.setLocked(names.Join(key, child), item)
	}
}

func (s *Store) deleteLocked(key string) {
	delete(s.values, key)
	prefix := key + names.Sep
	for name := range s.values {
		if strings.HasPrefix(name, prefix) {
			delete(s.values, name)
		}
	}
}

func (s *Store) getLocked(key string) (any, bool) {
	if value, ok := s.values[key]; ok {
		return value, true
	}
	prefix := key + names.Sep
	var tree map[string]any
	for name, value := range s.values {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if tree == nil {
			tree = make(map[string]any)
		}
		insert(tree, names.Split(name[len(prefix):]), value)
	}
	return tree, tree != nil
}

func insert(tree map[string]any, path []string, value any) {
	for _, segment := range path[:len(path)-1] {
		child, ok := tree[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			tree[segment] = child
		}
		tree = child
	}
	tree[path[len(path)-1]] = value
}
