package assessment

import "github.com/spigell/company-matcher/internal/category"

// Question is one step of the questionnaire.
type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []Option `json:"options" yaml:"options"`
}

// Option is a possible answer carrying raw, non-negative category weights.
type Option struct {
	ID      string          `json:"id" yaml:"id"`
	Text    string          `json:"text" yaml:"text"`
	Weights category.Vector `json:"weights" yaml:"-"`
}

// FindOption returns the option with the given id.
func (q *Question) FindOption(id string) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// OptionTexts returns the option labels in order.
func (q *Question) OptionTexts() []string {
	texts := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		text := o.Text
		if text == "" {
			text = o.ID
		}
		texts = append(texts, text)
	}
	return texts
}

func (q Question) clone() Question {
	q.Options = append([]Option(nil), q.Options...)
	return q
}
