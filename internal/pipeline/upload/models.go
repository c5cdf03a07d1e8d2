// internal/pipeline/upload/models.go
package upload

// Purpose identifies which intake flow a file belongs to.
type Purpose string

const (
	PurposeCV           Purpose = "cv"
	PurposeJustificatif Purpose = "justificatif"
)

// Submission is the ephemeral in-memory representation of an uploaded file.
// It is discarded after text extraction; only the extracted text and the
// persisted filename survive.
type Submission struct {
	Filename string
	MimeType string
	Data     []byte
	Purpose  Purpose
}

type Input struct {
	Submission *Submission
}

// Output carries the validated submission, unchanged, plus the MIME type
// sniffed from content and the extension derived from it.
type Output struct {
	Submission *Submission
	MimeType   string
	Extension  string
}
