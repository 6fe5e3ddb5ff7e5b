package ingestion

import (
	"io"
	"path/filepath"
	"strings"
)

// SheetReader reads the first sheet of a workbook as rows of text cells
type SheetReader interface {
	ReadRows(r io.Reader) ([][]string, error)
}

// readers maps a lower-cased file extension to its workbook reader
var readers = map[string]SheetReader{
	".xlsx": xlsxReader{},
	".xls":  xlsReader{},
}

// ReaderFor returns the reader registered for the file name's extension
func ReaderFor(name string) (SheetReader, bool) {
	r, ok := readers[strings.ToLower(filepath.Ext(name))]
	return r, ok
}

// SupportedExtensions lists the accepted upload extensions
func SupportedExtensions() []string {
	return []string{".xlsx", ".xls"}
}
