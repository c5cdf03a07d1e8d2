// internal/pipeline/extract/models.go
package extract

// SourceFormat identifies how the text was obtained.
type SourceFormat string

const (
	FormatPDF   SourceFormat = "PDF"
	FormatImage SourceFormat = "IMAGE"
)

type Input struct {
	Data     []byte
	MimeType string
	Filename string
}

// ExtractedDocument is the extractor's result. It lives only for the
// duration of the evaluation window and is never persisted.
type ExtractedDocument struct {
	RawText      string       `json:"rawText"`
	SourceFormat SourceFormat `json:"sourceFormat"`
	Success      bool         `json:"success"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}
