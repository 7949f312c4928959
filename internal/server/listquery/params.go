package listquery

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/common"
)

// Layouts accepted for date filters. Only the date part is used.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Params reads typed filter values from a query string and collects
// field-level errors. Empty values count as absent.
type Params struct {
	values url.Values
	errs   common.ValidationError
}

func NewParams(v url.Values) *Params {
	return &Params{values: v}
}

// String returns the trimmed value of name.
func (p *Params) String(name string) string {
	return strings.TrimSpace(p.values.Get(name))
}

// Int64 parses a positive integer id.
func (p *Params) Int64(name string) *int64 {
	raw := p.String(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		p.errs.Add(name, "Enter a number.")
		return nil
	}
	return &v
}

// Date parses a date or date-time and truncates it to the UTC day.
func (p *Params) Date(name string) *time.Time {
	raw := p.String(name)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	p.errs.Add(name, "Enter a valid date/time.")
	return nil
}

// Bool parses true/false, True/False and 1/0.
func (p *Params) Bool(name string) *bool {
	raw := p.String(name)
	if raw == "" {
		return nil
	}
	var v bool
	switch strings.ToLower(raw) {
	case "true", "1":
		v = true
	case "false", "0":
		v = false
	default:
		p.errs.Add(name, "Select a valid choice. "+raw+" is not one of the available choices.")
		return nil
	}
	return &v
}

// Err returns the collected validation errors, or nil.
func (p *Params) Err() error {
	return p.errs.OrNil()
}
