// Package validation holds the pure submission validation rules shared by
// the renderer session (before any network call) and the server-side
// submission service. Both sides apply the same required-field and file
// policies so a payload that passes locally is accepted remotely.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

// RequiredMessage is the per-field error shown for an empty required field.
const RequiredMessage = "This field is required"

// FileInfo describes one attached file for policy checks. Only metadata is
// needed; content stays with the caller.
type FileInfo struct {
	Filename string
	Size     int64
}

// FilePolicy bounds file uploads per field.
type FilePolicy struct {
	MaxFiles     int
	MaxFileSize  int64
	MaxTotalSize int64
	AllowedExts  []string
}

// DefaultFilePolicy is the single upload policy applied to every form:
// at most 5 files per field, 10MB per file, 12MB per field in total, and an
// extension allow-list.
func DefaultFilePolicy() FilePolicy {
	return FilePolicy{
		MaxFiles:     5,
		MaxFileSize:  10 << 20,
		MaxTotalSize: 12 << 20,
		AllowedExts: []string{
			".pdf", ".doc", ".docx", ".txt", ".rtf",
			".png", ".jpg", ".jpeg", ".gif", ".webp",
			".zip",
		},
	}
}

func (p FilePolicy) allows(ext string) bool {
	for _, allowed := range p.AllowedExts {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// Result carries per-field validation errors keyed by field id.
type Result struct {
	FieldErrors map[string]string
}

// OK reports whether the payload passed every check.
func (r Result) OK() bool {
	return len(r.FieldErrors) == 0
}

func (r *Result) add(fieldID, msg string) {
	if r.FieldErrors == nil {
		r.FieldErrors = map[string]string{}
	}
	if _, exists := r.FieldErrors[fieldID]; !exists {
		r.FieldErrors[fieldID] = msg
	}
}

// Validate checks the given values and files against a form's field list.
// Structural fields are skipped. A required checkbox group means at least
// one option selected; a required file field means at least one attachment.
func Validate(fields []models.FormField, values map[string][]string, files map[string][]FileInfo, policy FilePolicy) Result {
	var result Result

	for _, field := range fields {
		if field.Type.Structural() {
			continue
		}

		switch field.Type {
		case models.FieldFile:
			attached := files[field.ID]
			if field.Required && len(attached) == 0 {
				result.add(field.ID, RequiredMessage)
				continue
			}
			if msg := checkFilePolicy(attached, policy); msg != "" {
				result.add(field.ID, msg)
			}
		case models.FieldCheckbox:
			if field.Required && len(nonEmpty(values[field.ID])) == 0 {
				result.add(field.ID, RequiredMessage)
			}
		default:
			if field.Required && len(nonEmpty(values[field.ID])) == 0 {
				result.add(field.ID, RequiredMessage)
			}
		}
	}

	return result
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func checkFilePolicy(files []FileInfo, policy FilePolicy) string {
	if policy.MaxFiles > 0 && len(files) > policy.MaxFiles {
		return fmt.Sprintf("Too many files (max %d)", policy.MaxFiles)
	}

	var total int64
	for _, f := range files {
		ext := filepath.Ext(f.Filename)
		if len(policy.AllowedExts) > 0 && !policy.allows(ext) {
			return fmt.Sprintf("File type %q is not allowed", ext)
		}
		if policy.MaxFileSize > 0 && f.Size > policy.MaxFileSize {
			return fmt.Sprintf("File %q exceeds the %dMB limit", f.Filename, policy.MaxFileSize>>20)
		}
		total += f.Size
	}
	if policy.MaxTotalSize > 0 && total > policy.MaxTotalSize {
		return fmt.Sprintf("Attachments exceed the %dMB total limit", policy.MaxTotalSize>>20)
	}
	return ""
}
