package security

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// Resume uploads are PDF only.
const (
	ResumeExtension   = ".pdf"
	ResumeContentType = "application/pdf"
)

var pdfMagic = []byte{0x25, 0x50, 0x44, 0x46} // %PDF

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Detected file extension
	DetectedMIME string // Detected MIME type
	Error        string // Error message if validation failed
	TooLarge     bool   // Rejected on size alone
}

// DefaultMaxUploadBytes applies when no positive limit is configured.
const DefaultMaxUploadBytes int64 = 5 * 1024 * 1024

// FilePolicy bounds what a resume upload may be.
type FilePolicy struct {
	MaxBytes int64
}

// Limit is MaxBytes, or DefaultMaxUploadBytes when MaxBytes is not positive.
func (p FilePolicy) Limit() int64 {
	if p.MaxBytes <= 0 {
		return DefaultMaxUploadBytes
	}
	return p.MaxBytes
}

// ValidateResume performs the upload checks in order:
// 1. Size (declared and actual) within Limit()
// 2. Extension is .pdf
// 3. Magic bytes are %PDF
// 4. Sniffed MIME type is application/pdf
func (p FilePolicy) ValidateResume(filename string, declaredSize int64, data []byte) FileValidationResult {
	result := FileValidationResult{}

	size := declaredSize
	if int64(len(data)) > size {
		size = int64(len(data))
	}
	if size == 0 {
		result.Error = "file is empty"
		return result
	}
	if limit := p.Limit(); size > limit {
		result.TooLarge = true
		result.Error = fmt.Sprintf("file exceeds the %s limit", FormatBytes(limit))
		return result
	}

	ext := strings.ToLower(filepath.Ext(filename))
	result.Extension = ext
	if ext != ResumeExtension {
		if ext == "" {
			result.Error = "file has no extension; only PDF files are accepted"
		} else {
			result.Error = "file extension not allowed: " + ext + "; only PDF files are accepted"
		}
		return result
	}

	if len(data) < len(pdfMagic) || !bytes.HasPrefix(data, pdfMagic) {
		result.Error = "file content does not match extension (potential file spoofing detected)"
		return result
	}

	result.DetectedMIME = http.DetectContentType(data)
	if result.DetectedMIME != ResumeContentType {
		result.Error = "MIME type not allowed: " + result.DetectedMIME
		return result
	}

	result.Valid = true
	return result
}

// SanitizeFilename keeps ASCII letters, digits, '-' and '_' of the base name
// and forces the .pdf extension.
func SanitizeFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}

	clean := strings.Trim(b.String(), "_")
	if clean == "" {
		clean = "resume"
	}
	if len(clean) > 100 {
		clean = clean[:100]
	}
	return clean + ResumeExtension
}

func FormatBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
