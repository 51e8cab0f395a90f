package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType is the closed set of document formats accepted for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeXLSX FileType = "xlsx"
	FileTypeJSON FileType = "json"
	FileTypeTXT  FileType = "txt"
)

var allowedFileTypes = []FileType{FileTypePDF, FileTypeXLSX, FileTypeJSON, FileTypeTXT}

func AllowedFileTypes() []FileType {
	out := make([]FileType, len(allowedFileTypes))
	copy(out, allowedFileTypes)
	return out
}

// ParseFileType maps an extension (with or without the dot, any case) to a FileType.
func ParseFileType(ext string) (FileType, error) {
	ft := FileType(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
	if !ft.Valid() {
		return "", fmt.Errorf("file type %q not allowed", ext)
	}
	return ft, nil
}

// FileTypeFromName returns the FileType of a filename's extension.
func FileTypeFromName(name string) (FileType, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("file %q has no extension", name)
	}
	return ParseFileType(ext)
}

func (f FileType) Valid() bool {
	switch f {
	case FileTypePDF, FileTypeXLSX, FileTypeJSON, FileTypeTXT:
		return true
	default:
		return false
	}
}

func (f FileType) String() string {
	return string(f)
}
