// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"github.com/taskforge/taskforge/pkg/config"
)

// NewRateLimiterFromParameters builds a RateLimiter that throttles a single
// task run's outbound LLM/embedder calls, per the rate_limit parameters
// block. Returns nil if rate limiting is disabled.
//
// Unlike the teacher's database-backed factory, a task run has no shared
// persistent store to reconcile across processes, so usage always lives in
// an in-memory Store scoped to the run.
func NewRateLimiterFromParameters(p config.RateLimitParameters) (RateLimiter, error) {
	if !p.Enabled {
		return nil, nil
	}

	limits := make([]LimitRule, len(p.Limits))
	for i, l := range p.Limits {
		limits[i] = LimitRule{
			Type:   ParseLimitType(l.Type),
			Window: ParseTimeWindow(l.Window),
			Limit:  l.Limit,
		}
	}

	limiterCfg := &Config{
		Enabled: true,
		Limits:  limits,
	}

	return NewRateLimiter(limiterCfg, NewMemoryStore())
}
