// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import (
	"fmt"
	"sort"
)

// Registry maps collection names to their Normalizer and ImageArchive.
// Selection is by explicit configuration (a --source flag, a config value),
// not by sniffing file contents.
type Registry struct {
	normalizers map[string]Normalizer
	archives    map[string]ImageArchive
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		normalizers: make(map[string]Normalizer),
		archives:    make(map[string]ImageArchive),
	}
}

// Register adds a normalizer and its image archive under the normalizer's
// name. Registering the same name twice replaces the previous entry.
func (r *Registry) Register(normalizer Normalizer, archive ImageArchive) error {
	if normalizer == nil {
		return ErrNormalizerRequired
	}
	if normalizer.Name() == "" {
		return ErrEmptySourceName
	}
	r.normalizers[normalizer.Name()] = normalizer
	if archive != nil {
		r.archives[normalizer.Name()] = archive
	}
	return nil
}

// Normalizer returns the normalizer registered under name.
func (r *Registry) Normalizer(name string) (Normalizer, error) {
	n, ok := r.normalizers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownSource, name, r.Names())
	}
	return n, nil
}

// Archive returns the image archive registered under name.
func (r *Registry) Archive(name string) (ImageArchive, error) {
	a, ok := r.archives[name]
	if !ok {
		return nil, fmt.Errorf("%w: no image archive for %q", ErrUnknownSource, name)
	}
	return a, nil
}

// Names returns the registered collection names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.normalizers))
	for name := range r.normalizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
