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

// Package instruction substitutes {alias} placeholders in role prompt
// templates with the resolved context entries declared in a task
// definition (§3, §4.5).
//
//	template := "Review the draft against {requirements}."
//	resolved := instruction.Render(template, map[string]string{"requirements": "..."})
package instruction
