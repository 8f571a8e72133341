// Copyright 2025 Kadir Pekel
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

package provider

import (
	"context"
	"fmt"
	"log/slog"

	consulapi "github.com/hashicorp/consul/api"
)

// ConsulProvider loads a task definition from a Consul KV key and watches it
// with blocking queries.
type ConsulProvider struct {
	client *consulapi.Client
	key    string
}

// NewConsulProvider dials the Consul agent at addr (empty uses the default
// local agent address) and binds to the given KV key.
func NewConsulProvider(addr, key string) (*ConsulProvider, error) {
	if key == "" {
		return nil, fmt.Errorf("consul key is required")
	}

	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulProvider{client: client, key: key}, nil
}

func (p *ConsulProvider) Type() Type { return TypeConsul }

func (p *ConsulProvider) Load(ctx context.Context) ([]byte, error) {
	kv := p.client.KV()
	pair, _, err := kv.Get(p.key, (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to read consul key %s: %w", p.key, err)
	}
	if pair == nil {
		return nil, fmt.Errorf("consul key %s not found", p.key)
	}
	return pair.Value, nil
}

// Watch long-polls the key via Consul's blocking-query index and signals on
// every value change until ctx is cancelled.
func (p *ConsulProvider) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	go p.watchLoop(ctx, ch)
	return ch, nil
}

func (p *ConsulProvider) watchLoop(ctx context.Context, ch chan<- struct{}) {
	defer close(ch)

	kv := p.client.KV()
	var lastIndex uint64

	for {
		if ctx.Err() != nil {
			return
		}

		opts := (&consulapi.QueryOptions{WaitIndex: lastIndex, WaitTime: 0}).WithContext(ctx)
		pair, meta, err := kv.Get(p.key, opts)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("consul watch failed", "key", p.key, "error", err)
			return
		}

		if meta.LastIndex < lastIndex {
			lastIndex = 0
			continue
		}

		changed := lastIndex != 0 && meta.LastIndex != lastIndex
		lastIndex = meta.LastIndex

		if pair == nil {
			slog.Warn("consul key deleted", "key", p.key)
			return
		}

		if changed {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

func (p *ConsulProvider) Close() error { return nil }

var _ Provider = (*ConsulProvider)(nil)
