package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProfile is the structured log field key for the scoring profile name.
	FieldProfile = "profile"
	// FieldDocument is the structured log field key for the analyzed document (file name or label).
	FieldDocument = "document"
	// FieldRequestID is the structured log field key for the HTTP request identifier.
	FieldRequestID = "request_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AnalysisFields returns the standard fields describing one analysis:
// which profile scored it and which document was scored.
func AnalysisFields(profile, document string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProfile, Value: profile},
		StringField{Key: FieldDocument, Value: document},
	)
}

// WithAnalysisFields attaches the analysis fields to the provided logger.
func WithAnalysisFields(logger *zap.Logger, profile, document string) *zap.Logger {
	return WithFields(logger, AnalysisFields(profile, document)...)
}
