package process

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"remap/common"
)

// detectKind classifies a file by extension. Only documents we know how to
// scan for references are rewritable, everything else is carried verbatim.
func detectKind(name string) common.DocKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return common.DocKindHtml
	case ".css":
		return common.DocKindCss
	}
	return common.DocKindNone
}

// isArchiveFile sniffs file content rather than trusting the extension, site
// exports show up with all kinds of names.
func isArchiveFile(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}
