// internal/pipeline/upload/config.go
package upload

// Config holds file acceptance rules.
type Config struct {
	// MaxCVSizeBytes caps CV uploads; zero disables the cap.
	MaxCVSizeBytes int64
	// MaxJustificatifSizeBytes caps absence justificatif uploads.
	MaxJustificatifSizeBytes int64
}

func DefaultConfig() *Config {
	return &Config{
		MaxCVSizeBytes:           5 << 20,
		MaxJustificatifSizeBytes: 5 << 20,
	}
}
