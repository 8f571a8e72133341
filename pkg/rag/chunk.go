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

package rag

// Chunk is a piece of a document with position information for source
// mapping, as produced by a Chunker.
type Chunk struct {
	Content   string
	Index     int
	Total     int
	StartLine int
	EndLine   int
	StartByte int
	EndByte   int
	Context   *ChunkContext
}

// ChunkContext carries optional semantic context for a chunk (unused by the
// character/line chunkers, consulted by SemanticChunker when present).
type ChunkContext struct {
	FunctionName string
	TypeName     string
	FilePath     string
}

// Document is one unit of input to the indexing pipeline: either literal
// text or a file path to be read and, if binary, extracted first.
type Document struct {
	ID         string
	Content    string
	Title      string
	SourcePath string
	MimeType   string
	Size       int64
}
