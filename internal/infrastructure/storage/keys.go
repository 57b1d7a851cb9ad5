// Package storage keeps proof documents uploaded during intake.
package storage

import (
	"path"
	"strings"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/google/uuid"
)

// DocumentKey builds the object key of a proof document:
// <prefix>/<session>/<type>/<file>. Directory parts of fileName are dropped.
func DocumentKey(prefix string, sessionID uuid.UUID, docType intake.DocumentType, fileName string) string {
	parts := make([]string, 0, 4)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	return path.Join(append(parts, sessionID.String(), string(docType), cleanFileName(fileName))...)
}

func cleanFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, name)
}
