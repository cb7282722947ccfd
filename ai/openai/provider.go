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


package openai

import (
	"log/slog"
	"sync"

	"github.com/poiesic/tessera/ai"
)

// Provider implements ai.Provider with lazy, memoized encoder creation.
// The encoder client is built on the first Embedder call and shared for
// the remainder of the process.
type Provider struct {
	config *ai.Config
	logger *slog.Logger

	once     sync.Once
	embedder *Embedder
	initErr  error
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a provider for the given configuration. No network
// connection is made until the first Embedder call.
func NewProvider(config *ai.Config) (*Provider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		logger: slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the shared embedding service, creating it on first use.
func (p *Provider) Embedder() (ai.Embedder, error) {
	p.once.Do(func() {
		p.logger.Debug("initializing encoder client", "host", p.config.Host, "model", p.config.Model)
		p.embedder, p.initErr = newEmbedder(p.config)
	})
	if p.initErr != nil {
		return nil, p.initErr
	}
	return p.embedder, nil
}

// Close releases the encoder client. The HTTP-backed client holds no
// connections of its own, so this only drops the reference.
func (p *Provider) Close() error {
	p.embedder = nil
	return nil
}
