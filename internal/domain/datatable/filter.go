package datatable

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// FilterType selects how a filter value is interpreted
type FilterType string

// Filter types
const (
	FilterSelect      FilterType = "select"
	FilterMultiSelect FilterType = "multiselect"
	FilterBoolean     FilterType = "boolean"
	FilterDateRange   FilterType = "date_range"
	FilterText        FilterType = "text"
)

// Sentinel filter values
const (
	NullValue    = "__null__"
	NotNullValue = "__not_null__"
)

// DateLayout is the layout of date range bounds
const DateLayout = "2006-01-02"

// Option is a selectable filter value
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterQueryFunc applies a filter value to the query itself
type FilterQueryFunc func(db *gorm.DB, value interface{}) *gorm.DB

// Filter describes one table filter. The key identifies the filter in requests; the
// path names the filtered attribute and defaults to the key. Paths with a relation
// apply as an EXISTS subquery over that relation.
type Filter struct {
	key     string
	path    string
	label   string
	typ     FilterType
	options []Option
	mapping map[string]interface{}
	queryFn FilterQueryFunc
}

// NewFilter creates a select filter
func NewFilter(key string) *Filter {
	return &Filter{
		key:   key,
		path:  key,
		label: Humanize(key),
		typ:   FilterSelect,
	}
}

// Label sets the filter label
func (f *Filter) Label(label string) *Filter {
	f.label = label
	return f
}

// On sets the filtered attribute path
func (f *Filter) On(path string) *Filter {
	f.path = path
	return f
}

// Type sets the filter type
func (f *Filter) Type(t FilterType) *Filter {
	f.typ = t
	return f
}

// Options sets the selectable values
func (f *Filter) Options(options ...Option) *Filter {
	f.options = options
	return f
}

// MapValues maps UI values to stored values, e.g. {"verified": NotNullValue}
func (f *Filter) MapValues(mapping map[string]interface{}) *Filter {
	f.mapping = mapping
	return f
}

// QueryUsing replaces the default condition with a callback
func (f *Filter) QueryUsing(fn FilterQueryFunc) *Filter {
	f.queryFn = fn
	return f
}

// Key returns the request key
func (f *Filter) Key() string { return f.key }

// Path returns the filtered attribute path
func (f *Filter) Path() string { return f.path }

// Title returns the label
func (f *Filter) Title() string { return f.label }

// Kind returns the filter type
func (f *Filter) Kind() FilterType { return f.typ }

// QueryFunc returns the custom query callback, if any
func (f *Filter) QueryFunc() FilterQueryFunc { return f.queryFn }

// Relation returns the relationship part of the path
func (f *Filter) Relation() string { return RelationOf(f.path) }

// Attribute returns the attribute part of the path
func (f *Filter) Attribute() string { return AttributeOf(f.path) }

// FilterConfig is the serialized form of a Filter
type FilterConfig struct {
	Key     string     `json:"key"`
	Label   string     `json:"label"`
	Type    FilterType `json:"type"`
	Options []Option   `json:"options,omitempty"`
}

// Describe serializes the filter
func (f *Filter) Describe() FilterConfig {
	return FilterConfig{
		Key:     f.key,
		Label:   f.label,
		Type:    f.typ,
		Options: f.options,
	}
}

// Operator of a resolved filter condition
type Operator string

// Operators
const (
	OpEquals  Operator = "eq"
	OpIn      Operator = "in"
	OpNull    Operator = "null"
	OpNotNull Operator = "not_null"
	OpLike    Operator = "like"
	OpRange   Operator = "range"
)

// Condition is a filter value resolved against the filter type and value mapping
type Condition struct {
	Op     Operator
	Value  interface{}
	Values []interface{}
	// OrNull adds "OR IS NULL" to an IN condition when NullValue was selected
	OrNull bool
	// From is inclusive, To is exclusive
	From *time.Time
	To   *time.Time
}

// MapValue applies the value mapping to a single raw value
func (f *Filter) MapValue(v interface{}) interface{} {
	if f.mapping == nil {
		return v
	}
	if mapped, ok := f.mapping[fmt.Sprint(v)]; ok {
		return mapped
	}
	return v
}

// Resolve interprets a raw request value. ok is false when the value is empty and the
// filter must not be applied.
func (f *Filter) Resolve(raw interface{}) (Condition, bool, error) {
	if IsEmptyValue(raw) {
		return Condition{}, false, nil
	}

	if f.typ == FilterDateRange {
		return f.resolveDateRange(raw)
	}

	values := toSlice(raw)
	mapped := make([]interface{}, 0, len(values))
	for _, v := range values {
		if IsEmptyValue(v) {
			continue
		}
		mapped = append(mapped, f.MapValue(v))
	}
	if len(mapped) == 0 {
		return Condition{}, false, nil
	}

	if len(mapped) == 1 {
		switch sentinel(mapped[0]) {
		case NullValue:
			return Condition{Op: OpNull}, true, nil
		case NotNullValue:
			return Condition{Op: OpNotNull}, true, nil
		}

		switch f.typ {
		case FilterBoolean:
			b, err := parseBool(mapped[0])
			if err != nil {
				return Condition{}, false, fmt.Errorf("filter %s: %w", f.key, err)
			}
			return Condition{Op: OpEquals, Value: b}, true, nil
		case FilterText:
			return Condition{Op: OpLike, Value: ContainsPattern(fmt.Sprint(mapped[0]))}, true, nil
		case FilterMultiSelect:
			return Condition{Op: OpIn, Values: mapped}, true, nil
		default:
			return Condition{Op: OpEquals, Value: mapped[0]}, true, nil
		}
	}

	cond := Condition{Op: OpIn}
	for _, v := range mapped {
		switch sentinel(v) {
		case NullValue:
			cond.OrNull = true
		case NotNullValue:
			return Condition{}, false, fmt.Errorf("filter %s: %s cannot be combined with other values", f.key, NotNullValue)
		default:
			cond.Values = append(cond.Values, v)
		}
	}
	if len(cond.Values) == 0 {
		return Condition{Op: OpNull}, true, nil
	}
	return cond, true, nil
}

func (f *Filter) resolveDateRange(raw interface{}) (Condition, bool, error) {
	var from, to string

	switch v := raw.(type) {
	case map[string]interface{}:
		from, to = stringOf(v["from"]), stringOf(v["to"])
	case map[string]string:
		from, to = v["from"], v["to"]
	case string:
		parts := strings.SplitN(v, ",", 2)
		from = parts[0]
		if len(parts) == 2 {
			to = parts[1]
		}
	default:
		values := toSlice(raw)
		if len(values) > 0 {
			from = stringOf(values[0])
		}
		if len(values) > 1 {
			to = stringOf(values[1])
		}
	}

	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return Condition{}, false, nil
	}

	cond := Condition{Op: OpRange}
	if from != "" {
		t, err := time.Parse(DateLayout, from)
		if err != nil {
			return Condition{}, false, fmt.Errorf("filter %s: invalid from date %q", f.key, from)
		}
		cond.From = &t
	}
	if to != "" {
		t, err := time.Parse(DateLayout, to)
		if err != nil {
			return Condition{}, false, fmt.Errorf("filter %s: invalid to date %q", f.key, to)
		}
		end := t.AddDate(0, 0, 1)
		cond.To = &end
	}
	if cond.From != nil && cond.To != nil && !cond.From.Before(*cond.To) {
		return Condition{}, false, fmt.Errorf("filter %s: from date is after to date", f.key)
	}
	return cond, true, nil
}

// IsEmptyValue reports whether a raw filter value means "not filtered"
func IsEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				return false
			}
		}
		return true
	case []interface{}:
		for _, s := range t {
			if !IsEmptyValue(s) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for _, s := range t {
			if !IsEmptyValue(s) {
				return false
			}
		}
		return true
	case map[string]string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func sentinel(v interface{}) string {
	if s, ok := v.(string); ok && (s == NullValue || s == NotNullValue) {
		return s
	}
	return ""
}

func toSlice(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return []interface{}{v}
	}
}

func stringOf(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func parseBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case int:
		return t != 0, nil
	case float64:
		return t != 0, nil
	}

	switch strings.ToLower(strings.TrimSpace(fmt.Sprint(v))) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value %q", fmt.Sprint(v))
}

// LikeEscape is the escape character of patterns built by ContainsPattern
const LikeEscape = `\`

var likeEscaper = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// ContainsPattern returns a LIKE pattern matching term literally anywhere in a value.
// The pattern must be compared with ESCAPE LikeEscape.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
