// Package fsmodule implements the fs built-in module (§4.2): list and
// read, scoped to a working directory. Path safety is grounded on the
// teacher's pkg/tool/filetool.validatePath (no absolute paths, no
// directory traversal, resolved path must stay under the working
// directory).
package fsmodule

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/taskforge/taskforge/pkg/module"
	"github.com/taskforge/taskforge/pkg/rag"
)

const Name = "fs"

// documentExtensions are the binary document formats fs.read delegates
// to rag's extractor registry instead of rejecting as unsupported
// encoding — the same formats rag.index accepts.
var documentExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".xlsx": true,
}

// Module is the fs built-in module.
type Module struct {
	workingDir string
	extractors *rag.ExtractorRegistry
}

// New returns an fs module rooted at workingDir. An empty workingDir
// roots at the current directory.
func New(workingDir string) *Module {
	if workingDir == "" {
		workingDir = "."
	}
	return &Module{workingDir: workingDir, extractors: rag.NewExtractorRegistry()}
}

func (m *Module) Name() string    { return Name }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Execute(ctx context.Context, action string, args module.Args) (string, error) {
	switch action {
	case "list":
		return m.list(args)
	case "read":
		return m.read(ctx, args)
	default:
		return "", module.NewError(module.ModuleParseError, "fs: unknown action "+action)
	}
}

func (m *Module) list(args module.Args) (string, error) {
	path := args.Get("path")
	if path == "" {
		path = args.Positional(0)
	}
	recursive := args.Get("recursive") == "true"

	abs, err := m.resolve(path)
	if err != nil {
		return "", err
	}

	var paths []string
	if recursive {
		err = filepath.Walk(abs, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if p == abs {
				return nil
			}
			rel, relErr := filepath.Rel(abs, p)
			if relErr != nil {
				return relErr
			}
			paths = append(paths, rel)
			return nil
		})
	} else {
		var entries []os.DirEntry
		entries, err = os.ReadDir(abs)
		for _, e := range entries {
			paths = append(paths, e.Name())
		}
	}
	if err != nil {
		if os.IsNotExist(err) {
			return "", module.NewError(module.PathNotFound, path)
		}
		return "", module.NewError(module.PathNotFound, err.Error())
	}

	sort.Strings(paths)
	return strings.Join(paths, "\n"), nil
}

func (m *Module) read(ctx context.Context, args module.Args) (string, error) {
	path := args.Get("path")
	if path == "" {
		path = args.Positional(0)
	}

	abs, err := m.resolve(path)
	if err != nil {
		return "", err
	}

	var content string
	if documentExtensions[strings.ToLower(filepath.Ext(abs))] {
		info, statErr := os.Stat(abs)
		if statErr != nil {
			if os.IsNotExist(statErr) {
				return "", module.NewError(module.PathNotFound, path)
			}
			return "", module.NewError(module.PathNotFound, statErr.Error())
		}
		extracted, extractErr := m.extractors.ExtractContent(ctx, abs, "", info.Size())
		if extractErr != nil {
			return "", module.NewError(module.UnsupportedEncoding, path+": "+extractErr.Error())
		}
		content = extracted.Content
	} else {
		data, readErr := os.ReadFile(abs)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				return "", module.NewError(module.PathNotFound, path)
			}
			return "", module.NewError(module.PathNotFound, readErr.Error())
		}
		if !isTextContent(data) {
			return "", module.NewError(module.UnsupportedEncoding, path)
		}
		content = string(data)
	}

	offset := atoiOr(args.Get("offset"), 0)
	length := atoiOr(args.Get("length"), 0)
	if offset > 0 || length > 0 {
		content = slice(content, offset, length)
	}
	return content, nil
}

// resolve rejects absolute paths and directory traversal, then confirms
// the cleaned, joined path stays under the working directory.
func (m *Module) resolve(path string) (string, error) {
	if path == "" {
		return "", module.NewError(module.PathNotFound, "path is required")
	}
	if filepath.IsAbs(path) {
		return "", module.NewError(module.PathNotFound, "absolute paths not allowed: "+path)
	}
	cleaned := filepath.Clean(path)
	if strings.HasPrefix(cleaned, "..") {
		return "", module.NewError(module.PathNotFound, "directory traversal not allowed: "+path)
	}

	absWorkDir, err := filepath.Abs(m.workingDir)
	if err != nil {
		return "", module.NewError(module.PathNotFound, err.Error())
	}
	absPath, err := filepath.Abs(filepath.Join(absWorkDir, cleaned))
	if err != nil {
		return "", module.NewError(module.PathNotFound, err.Error())
	}
	if absPath != absWorkDir && !strings.HasPrefix(absPath, absWorkDir+string(os.PathSeparator)) {
		return "", module.NewError(module.PathNotFound, "path escapes working directory: "+path)
	}
	return absPath, nil
}

// isTextContent rejects content containing a NUL byte in its first 8KB,
// the same binary-sniff heuristic the teacher's TextExtractor applies.
func isTextContent(data []byte) bool {
	probe := data
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	for _, b := range probe {
		if b == 0 {
			return false
		}
	}
	return true
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func slice(content string, offset, length int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(content) {
		return ""
	}
	end := len(content)
	if length > 0 && offset+length < end {
		end = offset + length
	}
	return content[offset:end]
}
