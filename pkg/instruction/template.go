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

package instruction

import (
	"regexp"
	"strings"
)

// placeholderRegex matches {alias} placeholders: one or more opening
// braces, identifier-ish content, one or more closing braces. Kept from
// the teacher's broader instruction-templating regex (which also
// matched {app:var}, {artifact.name}, {var?} for session/artifact
// resolution against an agent.ReadonlyContext this runtime has no
// equivalent of); this runtime has exactly one placeholder kind —
// named context aliases — so the replacement logic was trimmed down to
// match, leaving unknown placeholders untouched as literal text.
var placeholderRegex = regexp.MustCompile(`{+[^{}]*}+`)

// Render substitutes every {alias} placeholder in template with
// aliases[alias]. A placeholder whose alias has no entry in aliases is
// left untouched in the output.
func Render(template string, aliases map[string]string) string {
	if template == "" {
		return ""
	}
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSpace(strings.Trim(match, "{}"))
		if value, ok := aliases[name]; ok {
			return value
		}
		return match
	})
}

// HasPlaceholders returns true if template contains any {alias} markers.
func HasPlaceholders(template string) bool {
	return placeholderRegex.MatchString(template)
}
