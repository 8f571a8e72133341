package fsmodule

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/taskforge/taskforge/pkg/module"
)

func TestReadReturnsContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello world"), 0644))

	m := New(dir)
	out, err := m.Execute(context.Background(), "read", module.Args{"path": "a.txt"})
	require.NoError(t, err)
	require.Equal(t, "hello world", out)
}

func TestReadBinaryIsUnsupportedEncoding(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bin"), []byte{0, 1, 2, 3}, 0644))

	m := New(dir)
	_, err := m.Execute(context.Background(), "read", module.Args{"path": "b.bin"})
	var modErr *module.Error
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, module.UnsupportedEncoding, modErr.Kind)
}

func TestReadMissingFileIsPathNotFound(t *testing.T) {
	m := New(t.TempDir())
	_, err := m.Execute(context.Background(), "read", module.Args{"path": "missing.txt"})
	var modErr *module.Error
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, module.PathNotFound, modErr.Kind)
}

func TestReadRejectsTraversal(t *testing.T) {
	m := New(t.TempDir())
	_, err := m.Execute(context.Background(), "read", module.Args{"path": "../../etc/passwd"})
	var modErr *module.Error
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, module.PathNotFound, modErr.Kind)
}

// writeMinimalDocx writes the three OOXML parts every docx reader
// requires ([Content_Types].xml, _rels/.rels, word/document.xml).
func writeMinimalDocx(t *testing.T, path, text string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>
  </w:body>
</w:document>`,
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestReadExtractsDocxContentEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeMinimalDocx(t, filepath.Join(dir, "report.docx"), "fsmodule docx fixture text")

	m := New(dir)
	out, err := m.Execute(context.Background(), "read", module.Args{"path": "report.docx"})
	require.NoError(t, err)
	require.Contains(t, out, "fsmodule docx fixture text")
}

func TestReadExtractsXlsxContentEndToEnd(t *testing.T) {
	dir := t.TempDir()

	xf := excelize.NewFile()
	require.NoError(t, xf.SetSheetName(xf.GetSheetName(0), "Sheet1"))
	require.NoError(t, xf.SetCellValue("Sheet1", "A1", "fsmodule-xlsx-cell"))
	require.NoError(t, xf.SaveAs(filepath.Join(dir, "report.xlsx")))
	require.NoError(t, xf.Close())

	m := New(dir)
	out, err := m.Execute(context.Background(), "read", module.Args{"path": "report.xlsx"})
	require.NoError(t, err)
	require.Contains(t, out, "fsmodule-xlsx-cell")
}

func TestListReturnsOnePathPerLine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0644))

	m := New(dir)
	out, err := m.Execute(context.Background(), "list", module.Args{"path": "."})
	require.NoError(t, err)
	require.Equal(t, "a.txt\nb.txt", out)
}
