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

import (
	"strings"

	"github.com/taskforge/taskforge/pkg/utils"
)

// TokenChunker groups lines into chunks bounded by LLM token count rather
// than character count, via github.com/pkoukk/tiktoken-go. It always
// groups by line, the same way SimpleChunker does for characters;
// strategy-specific overlap/semantic splitting is not reimplemented at
// token granularity, since nothing in this runtime needs more than a
// token-accurate chunk boundary.
type TokenChunker struct {
	config  ChunkerConfig
	counter *utils.TokenCounter
}

// NewTokenChunker creates a token-bounded chunker for the given config.
// cfg.Model selects the tiktoken encoding; an unrecognized or empty model
// falls back to cl100k_base via utils.NewTokenCounter.
func NewTokenChunker(cfg ChunkerConfig) (*TokenChunker, error) {
	cfg.SetDefaults()
	counter, err := utils.NewTokenCounter(cfg.Model)
	if err != nil {
		return nil, err
	}
	return &TokenChunker{config: cfg, counter: counter}, nil
}

func (c *TokenChunker) Chunk(content string, ctx *ChunkContext) ([]Chunk, error) {
	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	if c.counter.Count(content) <= c.config.Size {
		return []Chunk{{
			Content:   content,
			StartLine: 1,
			EndLine:   totalLines,
			StartByte: 0,
			EndByte:   len(content),
			Index:     0,
			Total:     1,
			Context:   ctx,
		}}, nil
	}

	var chunks []Chunk
	var currentChunk strings.Builder
	chunkStartLine := 1
	chunkStartByte := 0
	currentLine := 1
	currentByte := 0
	currentTokens := 0

	for i, line := range lines {
		lineWithNewline := line
		if i < len(lines)-1 {
			lineWithNewline += "\n"
		}
		lineLen := len(lineWithNewline)
		lineTokens := c.counter.Count(lineWithNewline)

		if currentChunk.Len() > 0 && currentTokens+lineTokens > c.config.Size {
			chunks = append(chunks, Chunk{
				Content:   currentChunk.String(),
				StartLine: chunkStartLine,
				EndLine:   currentLine - 1,
				StartByte: chunkStartByte,
				EndByte:   currentByte,
				Index:     len(chunks),
				Total:     0,
				Context:   ctx,
			})

			currentChunk.Reset()
			currentTokens = 0
			chunkStartLine = currentLine
			chunkStartByte = currentByte
		}

		currentChunk.WriteString(lineWithNewline)
		currentTokens += lineTokens
		currentLine++
		currentByte += lineLen
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, Chunk{
			Content:   currentChunk.String(),
			StartLine: chunkStartLine,
			EndLine:   totalLines,
			StartByte: chunkStartByte,
			EndByte:   len(content),
			Index:     len(chunks),
			Total:     0,
			Context:   ctx,
		})
	}

	total := len(chunks)
	for i := range chunks {
		chunks[i].Total = total
	}

	return chunks, nil
}

func (c *TokenChunker) Strategy() ChunkerStrategy {
	return "tokens"
}

func (c *TokenChunker) Config() ChunkerConfig {
	return c.config
}

var _ Chunker = (*TokenChunker)(nil)
