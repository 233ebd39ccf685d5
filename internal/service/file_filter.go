package service

import (
	"path/filepath"
	"strings"

	"github.com/GTDGit/supplyconnect/internal/utils"
)

// FileFilter decides whether an uploaded file matches an accept string such
// as ".csv,text/csv". Tokens starting with "." match the file extension,
// other tokens match the MIME type exactly or by "type/*" wildcard, and "*"
// accepts anything.
type FileFilter struct {
	raw        []string
	extensions map[string]bool
	mimeTypes  map[string]bool
	mimeGroups map[string]bool
	any        bool
}

// NewFileFilter parses a comma separated accept string.
func NewFileFilter(accept string) *FileFilter {
	f := &FileFilter{
		extensions: make(map[string]bool),
		mimeTypes:  make(map[string]bool),
		mimeGroups: make(map[string]bool),
	}
	for _, tok := range strings.Split(accept, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		switch {
		case tok == "":
			continue
		case tok == "*" || tok == "*/*":
			f.any = true
		case strings.HasPrefix(tok, "."):
			f.extensions[tok] = true
		case strings.HasSuffix(tok, "/*"):
			f.mimeGroups[strings.TrimSuffix(tok, "*")] = true
		default:
			f.mimeTypes[tok] = true
		}
		f.raw = append(f.raw, tok)
	}
	return f
}

// Accepted returns the normalized accept tokens.
func (f *FileFilter) Accepted() []string {
	out := make([]string, len(f.raw))
	copy(out, f.raw)
	return out
}

// Check returns nil when the file is acceptable, or an
// *utils.UnsupportedFileTypeError naming the accepted types.
func (f *FileFilter) Check(fileName, contentType string) error {
	if f.Matches(fileName, contentType) {
		return nil
	}
	return &utils.UnsupportedFileTypeError{FileName: fileName, Accept: f.Accepted()}
}

// Matches reports whether the file passes the filter.
func (f *FileFilter) Matches(fileName, contentType string) bool {
	if f.any {
		return true
	}
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" && f.extensions[ext] {
		return true
	}

	mt := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "" {
		return false
	}
	if f.mimeTypes[mt] {
		return true
	}
	if i := strings.IndexByte(mt, '/'); i > 0 && f.mimeGroups[mt[:i+1]] {
		return true
	}
	return false
}
