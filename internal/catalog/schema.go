package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/spigell/company-matcher/internal/assessment"
)

//go:embed questions.schema.json
var questionsSchema string

var questionsSchemaLoader = gojsonschema.NewStringLoader(questionsSchema)

// validateQuestionsShape checks the document layout before it is decoded.
// Weight values are checked later so errors can name the question.
func validateQuestionsShape(doc *yaml.Node) error {
	var raw any
	if err := doc.Decode(&raw); err != nil {
		return &assessment.DataError{Reason: fmt.Sprintf("decode questions: %v", err)}
	}

	result, err := gojsonschema.Validate(questionsSchemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("validate questions: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &assessment.DataError{Reason: "malformed questionnaire: " + strings.Join(problems, "; ")}
}
