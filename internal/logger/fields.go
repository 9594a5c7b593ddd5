package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/category"
)

const (
	// FieldProvider is the structured log field key for the explanation provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the provider model identifier.
	FieldModel = "ai_model"
	// FieldSession is the structured log field key for the session id.
	FieldSession = "session_id"
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

// WithFields attaches the fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the explanation provider and model. Empty values are skipped.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// VectorFields renders a preference vector as one field per non-zero category.
func VectorFields(v category.Vector) []zap.Field {
	fields := make([]zap.Field, 0, category.Count)
	for _, c := range category.All() {
		if x := v.Get(c); x != 0 {
			fields = append(fields, zap.Float64(c.ID(), x))
		}
	}
	return fields
}
