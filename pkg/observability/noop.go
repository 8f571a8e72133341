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

package observability

import (
	"context"
	"time"
)

// NoopManager returns a no-operation Manager that does nothing; every
// Manager method is nil-safe so zero-value use works identically.
func NoopManager() *Manager {
	return &Manager{}
}

// NoopMetrics is the Metrics implementation GetGlobalMetrics returns before
// SetGlobalMetrics has been called, or when metrics are disabled entirely.
type NoopMetrics struct{}

func (NoopMetrics) RecordAgentCall(context.Context, time.Duration, int, error)                  {}
func (NoopMetrics) RecordToolExecution(context.Context, string, time.Duration, error)            {}
func (NoopMetrics) RecordLLMCall(context.Context, string, time.Duration, int, int, error)        {}
func (NoopMetrics) RecordHTTPRequest(context.Context, string, string, int, time.Duration, int)   {}
func (NoopMetrics) RecordGRPCCall(context.Context, string, string, string, time.Duration, error) {}
func (NoopMetrics) RecordSession(context.Context, string, time.Duration, bool)                   {}
func (NoopMetrics) RecordConversationTurn(context.Context, string, int)                           {}

var _ Metrics = NoopMetrics{}
