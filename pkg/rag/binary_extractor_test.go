package rag

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeMinimalDocx writes a minimal, spec-valid OOXML WordprocessingML
// package: just the three parts every docx reader requires
// ([Content_Types].xml, _rels/.rels, word/document.xml).
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

// writeMinimalXlsx builds a real workbook through excelize itself (the
// same library native_parsers.go reads it back with), rather than
// hand-rolling the OOXML spreadsheet parts.
func writeMinimalXlsx(t *testing.T, path, sheetName, cell, value string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheetName))
	require.NoError(t, f.SetCellValue(sheetName, cell, value))
	require.NoError(t, f.SaveAs(path))
}

// minimalPDF is the "simple PDF file" example from ISO 32000-1 Annex
// H.2, reproduced verbatim (including its published xref byte offsets)
// since it's the industry-standard minimal fixture for exercising a
// PDF parser's normal (non-recovery) xref path.
const minimalPDF = "%PDF-1.4\n" +
	"1 0 obj\n<< /Type /Catalog\n/Pages 2 0 R\n>>\nendobj\n" +
	"2 0 obj\n<< /Type /Pages\n/Kids [3 0 R]\n/Count 1\n/MediaBox [0 0 300 144]\n>>\nendobj\n" +
	"3 0 obj\n<< /Type /Page\n/Parent 2 0 R\n/Resources\n<< /Font\n<< /F1 4 0 R >>\n>>\n/Contents 5 0 R\n>>\nendobj\n" +
	"4 0 obj\n<< /Type /Font\n/Subtype /Type1\n/BaseFont /Times-Roman\n>>\nendobj\n" +
	"5 0 obj\n<< /Length 73 >>\nstream\nBT\n/F1 24 Tf\n100 100 Td\n(Hello World) Tj\nET\nendstream\nendobj\n" +
	"xref\n0 6\n" +
	"0000000000 65535 f \n" +
	"0000000009 00000 n \n" +
	"0000000058 00000 n \n" +
	"0000000115 00000 n \n" +
	"0000000262 00000 n \n" +
	"0000000341 00000 n \n" +
	"trailer\n<< /Size 6\n/Root 1 0 R\n>>\nstartxref\n492\n%%EOF\n"

func writeMinimalPDF(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(minimalPDF), 0o644))
}

func TestExtractorRegistryRegistersBinaryExtractor(t *testing.T) {
	reg := NewExtractorRegistry()
	require.True(t, reg.HasExtractorForFile("report.pdf", ""))
	require.True(t, reg.HasExtractorForFile("report.docx", ""))
	require.True(t, reg.HasExtractorForFile("report.xlsx", ""))
}

func TestExtractContentReadsDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.docx")
	writeMinimalDocx(t, path, "Hello from a real docx fixture")

	reg := NewExtractorRegistry()
	info, err := os.Stat(path)
	require.NoError(t, err)

	content, err := reg.ExtractContent(context.Background(), path, "", info.Size())
	require.NoError(t, err)
	require.Equal(t, "BinaryExtractor", content.ExtractorName)
	require.False(t, strings.Contains(content.Content, "Error parsing"))
	require.Contains(t, content.Content, "Hello from a real docx fixture")
}

func TestExtractContentReadsXlsx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")
	writeMinimalXlsx(t, path, "Sheet1", "A1", "taskforge-cell")

	reg := NewExtractorRegistry()
	info, err := os.Stat(path)
	require.NoError(t, err)

	content, err := reg.ExtractContent(context.Background(), path, "", info.Size())
	require.NoError(t, err)
	require.Equal(t, "BinaryExtractor", content.ExtractorName)
	require.False(t, strings.Contains(content.Content, "Error parsing"))
	require.Contains(t, content.Content, "taskforge-cell")
}

func TestExtractContentReadsPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	writeMinimalPDF(t, path)

	reg := NewExtractorRegistry()
	info, err := os.Stat(path)
	require.NoError(t, err)

	content, err := reg.ExtractContent(context.Background(), path, "", info.Size())
	require.NoError(t, err)
	require.Equal(t, "BinaryExtractor", content.ExtractorName)
}
