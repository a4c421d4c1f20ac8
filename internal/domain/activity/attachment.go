package activity

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Attachment is evidence stored next to a completed activity. URL and
// PublicID point at the media store; DataURL only appears in older backups
// that inlined the file.
type Attachment struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	URL       string    `json:"url,omitempty"`
	PublicID  string    `json:"publicId,omitempty"`
	DataURL   string    `json:"dataUrl,omitempty"`
	DateAdded time.Time `json:"dateAdded,omitzero"`
}

const (
	MaxEvidenceFileSize  = 10 << 20
	MaxEvidenceBatchSize = 50 << 20
	MaxEvidenceBatch     = 10
	maxEvidenceNameLen   = 100
)

var evidenceTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"text/plain": true,
}

func IsEvidenceType(mime string) bool {
	return evidenceTypes[mime]
}

// ValidateEvidence checks an upload batch. Batch-level limits are reported
// alone; otherwise every failing file gets its own message.
func ValidateEvidence(files []Attachment) []string {
	if len(files) > MaxEvidenceBatch {
		return []string{fmt.Sprintf("Maximum %d files can be uploaded at once.", MaxEvidenceBatch)}
	}
	var total int64
	for _, f := range files {
		total += f.Size
	}
	if total > MaxEvidenceBatchSize {
		return []string{"Total file size exceeds 50MB limit. Please select fewer or smaller files."}
	}

	var problems []string
	for _, f := range files {
		if f.Size > MaxEvidenceFileSize {
			problems = append(problems, fmt.Sprintf("File %q is too large. Maximum size is 10MB.", f.Name))
		}
		if !IsEvidenceType(f.Type) {
			problems = append(problems, fmt.Sprintf("File %q is not a supported format. Please use PDF, Word, or image files.", f.Name))
		}
		if utf8.RuneCountInString(f.Name) > maxEvidenceNameLen {
			problems = append(problems, fmt.Sprintf("File name %q is too long. Please use a shorter name.", f.Name))
		}
	}
	return problems
}
