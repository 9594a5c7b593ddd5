package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/company-matcher/internal/category"
	"github.com/spigell/company-matcher/internal/matching"
)

const tagsSuffix = "_tags"

type companyRecord struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Industry    string `mapstructure:"industry"`
	Description string `mapstructure:"description"`
	Website     string `mapstructure:"website"`
	Scores      any    `mapstructure:"scores"`
	Tags        any    `mapstructure:"tags"`
}

// LoadCompanies reads a company catalog. Rows are never rejected: unreadable
// scores become 0 and rows without an id are named after their position.
func (l *Loader) LoadCompanies(path string) ([]matching.CompanyProfile, error) {
	data, format, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var companies []matching.CompanyProfile
	switch format {
	case FormatCSV:
		companies, err = l.ParseCompaniesCSV(bytes.NewReader(data))
	default:
		companies, err = l.ParseCompanies(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Debug("companies loaded", zap.String("path", path), zap.Int("companies", len(companies)))
	return companies, nil
}

// ParseCompanies decodes a YAML or JSON catalog: a list of companies or a
// mapping with a "companies" key. Scores are a mapping keyed by category
// identifier or a list in category order. Tags are keyed by category and hold
// a list or a comma separated string.
func (l *Loader) ParseCompanies(data []byte) ([]matching.CompanyProfile, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode companies: %w", err)
	}

	var rows []any
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		rows = v
	case map[string]any:
		list, ok := v["companies"].([]any)
		if !ok && v["companies"] != nil {
			return nil, errors.New(`decode companies: "companies" must be a list`)
		}
		rows = list
	default:
		return nil, fmt.Errorf("decode companies: unexpected document of type %T", doc)
	}

	companies := make([]matching.CompanyProfile, 0, len(rows))
	for i, row := range rows {
		var record companyRecord
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &record,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(row); err != nil {
			l.logger.Warn("company row skipped fields", zap.Int("row", i+1), zap.Error(err))
		}
		companies = append(companies, l.fromRecord(i+1, record))
	}

	return companies, nil
}

func (l *Loader) fromRecord(row int, r companyRecord) matching.CompanyProfile {
	c := matching.CompanyProfile{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Industry:    strings.TrimSpace(r.Industry),
		Description: strings.TrimSpace(r.Description),
		Website:     strings.TrimSpace(r.Website),
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("row-%d", row)
	}

	var scores category.Vector
	switch v := r.Scores.(type) {
	case []any:
		for i, value := range v {
			if i >= category.Count {
				l.logger.Warn("extra company scores dropped", zap.String("company_id", c.ID), zap.Int("components", len(v)))
				break
			}
			scores[i] = l.score(c.ID, category.Category(i).ID(), value)
		}
	case map[string]any:
		for key, value := range v {
			cat, err := category.Parse(key)
			if err != nil {
				l.logger.Warn("unknown score category ignored", zap.String("company_id", c.ID), zap.String("category", key))
				continue
			}
			scores[cat] = l.score(c.ID, cat.ID(), value)
		}
	case nil:
	default:
		l.logger.Warn("company scores ignored", zap.String("company_id", c.ID), zap.Any("scores", v))
	}
	c.Scores = scores.Slice()

	if tags, ok := r.Tags.(map[string]any); ok {
		for key, value := range tags {
			cat, err := category.Parse(key)
			if err != nil {
				l.logger.Warn("unknown tag category ignored", zap.String("company_id", c.ID), zap.String("category", key))
				continue
			}
			c.Tags = addTags(c.Tags, cat, value)
		}
	}

	return c
}

func (l *Loader) score(companyID, key string, value any) float64 {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return 0
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		l.logger.Warn("invalid company score replaced with 0",
			zap.String("company_id", companyID),
			zap.String("category", key),
			zap.Any("value", value),
		)
		return 0
	}
	return f
}

func addTags(tags map[category.Category][]string, cat category.Category, value any) map[category.Category][]string {
	var list []string
	switch v := value.(type) {
	case string:
		list = splitTags(v)
	default:
		for _, t := range cast.ToStringSlice(v) {
			if t = strings.TrimSpace(t); t != "" {
				list = append(list, t)
			}
		}
	}
	if len(list) == 0 {
		return tags
	}
	if tags == nil {
		tags = make(map[category.Category][]string)
	}
	tags[cat] = append(tags[cat], list...)
	return tags
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseCompaniesCSV reads a catalog with a header row. Recognized columns are
// id, name, industry, description, website, one column per category
// identifier (or score1..score10 in category order) and <category>_tags with
// comma separated tags.
func (l *Loader) ParseCompaniesCSV(r io.Reader) ([]matching.CompanyProfile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var companies []matching.CompanyProfile
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}

		fields := make(map[string]any, len(header))
		scores := make(map[string]any)
		tags := make(map[string]any)
		for i, column := range header {
			if i >= len(record) {
				break
			}
			l.assignColumn(strings.TrimSpace(column), record[i], fields, scores, tags)
		}
		fields["scores"] = scores
		fields["tags"] = tags

		var rec companyRecord
		if err := mapstructure.WeakDecode(fields, &rec); err != nil {
			l.logger.Warn("company row skipped fields", zap.Int("row", row), zap.Error(err))
		}
		companies = append(companies, l.fromRecord(row, rec))
	}

	return companies, nil
}

func (l *Loader) assignColumn(column, value string, fields, scores, tags map[string]any) {
	key := strings.ToLower(column)
	switch key {
	case "id", "name", "industry", "description", "website":
		fields[key] = strings.TrimSpace(value)
		return
	}

	if base, ok := strings.CutSuffix(key, tagsSuffix); ok {
		tags[base] = value
		return
	}
	if base, ok := strings.CutSuffix(key, "-tags"); ok {
		tags[base] = value
		return
	}

	if n, ok := strings.CutPrefix(key, "score"); ok {
		if i, err := cast.ToIntE(n); err == nil && i >= 1 && i <= category.Count {
			scores[category.Category(i-1).ID()] = value
			return
		}
	}

	if _, err := category.Parse(key); err == nil {
		scores[key] = value
		return
	}

	l.logger.Debug("unknown csv column ignored", zap.String("column", column))
}
