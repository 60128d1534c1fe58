// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Column widths of the expenses table.
const (
	MaxCategoryLen    = 120
	MaxDateLen        = 120
	MaxDescriptionLen = 255
)

// Expense is a single financial record.
type Expense struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`        // free-form, stored as-is
	Description string  `json:"description"` // optional
}

// Draft is the input of a create operation. Date and Description
// default to the empty string when absent.
type Draft struct {
	Amount      float64
	Category    string
	Date        string
	Description string
}

// Expense returns the draft as an expense without an id.
func (d Draft) Expense() Expense {
	return Expense{
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        d.Date,
		Description: d.Description,
	}
}

// Patch is the input of a partial update. A nil field was absent from
// the request body and leaves the stored value untouched.
type Patch struct {
	Amount      *float64
	Category    *string
	Date        *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Date == nil && p.Description == nil
}

// Apply returns e with every present field of p overwritten.
func (p Patch) Apply(e Expense) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	return e
}

// ParseDraft decodes a create request body. The body must be a JSON
// object carrying both amount and category.
func ParseDraft(body []byte) (Draft, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return Draft{}, err
	}
	if fields == nil {
		return Draft{}, fmt.Errorf("%w: missing body", ErrInvalidInput)
	}
	if _, ok := fields["amount"]; !ok {
		return Draft{}, fmt.Errorf("%w: missing amount", ErrInvalidInput)
	}
	if _, ok := fields["category"]; !ok {
		return Draft{}, fmt.Errorf("%w: missing category", ErrInvalidInput)
	}

	p, err := patchFromFields(fields)
	if err != nil {
		return Draft{}, err
	}
	d := Draft{Amount: *p.Amount, Category: *p.Category}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	return d, nil
}

// ParsePatch decodes an update request body. An empty body is an empty
// patch; malformed JSON is rejected.
func ParsePatch(body []byte) (Patch, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return Patch{}, err
	}
	return patchFromFields(fields)
}

// decodeObject returns nil, nil for an empty body.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object: %v", ErrInvalidInput, err)
	}
	if fields == nil {
		// literal null
		return nil, nil
	}
	return fields, nil
}

func patchFromFields(fields map[string]json.RawMessage) (Patch, error) {
	var p Patch
	if raw, ok := fields["amount"]; ok {
		if isNull(raw) {
			return Patch{}, fmt.Errorf("%w: amount must not be null", ErrInvalidInput)
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return Patch{}, fmt.Errorf("%w: amount must be a number", ErrInvalidInput)
		}
		p.Amount = &v
	}
	if raw, ok := fields["category"]; ok {
		if isNull(raw) {
			return Patch{}, fmt.Errorf("%w: category must not be null", ErrInvalidInput)
		}
		v, err := stringField("category", raw, MaxCategoryLen)
		if err != nil {
			return Patch{}, err
		}
		p.Category = &v
	}
	if raw, ok := fields["date"]; ok {
		v, err := stringField("date", raw, MaxDateLen)
		if err != nil {
			return Patch{}, err
		}
		p.Date = &v
	}
	if raw, ok := fields["description"]; ok {
		v, err := stringField("description", raw, MaxDescriptionLen)
		if err != nil {
			return Patch{}, err
		}
		p.Description = &v
	}
	return p, nil
}

// stringField maps JSON null to "".
func stringField(name string, raw json.RawMessage, maxLen int) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidInput, name)
	}
	if utf8.RuneCountInString(v) > maxLen {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, name, maxLen)
	}
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
