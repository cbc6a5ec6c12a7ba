package model

import (
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// fieldCheck accumulates the first constraint violation for a collection.
type fieldCheck struct {
	collection string
	err        *WriteError
}

func newCheck(collection string) *fieldCheck {
	return &fieldCheck{collection: collection}
}

func (c *fieldCheck) fail(field, reason string) {
	if c.err == nil {
		c.err = &WriteError{Collection: c.collection, Field: field, Reason: reason}
	}
}

func (c *fieldCheck) required(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.fail(field, "is required")
	}
}

func (c *fieldCheck) date(field, v string) {
	if _, err := time.Parse(DateLayout, v); err != nil {
		c.fail(field, "must be a YYYY-MM-DD date")
	}
}

func (c *fieldCheck) optionalDate(field string, v *string) {
	if v != nil && *v != "" {
		c.date(field, *v)
	}
}

func (c *fieldCheck) clock(field, v string) {
	if _, err := time.Parse(TimeLayout, v); err != nil {
		c.fail(field, "must be an HH:MM time")
	}
}

func (c *fieldCheck) optionalClock(field, v string) {
	if v != "" {
		c.clock(field, v)
	}
}

func (c *fieldCheck) oneOf(field, v string, allowed map[string]bool) {
	if !allowed[v] {
		c.fail(field, "has unsupported value "+strconv.Quote(v))
	}
}

func (c *fieldCheck) between(field string, v, lo, hi int) {
	if v < lo || v > hi {
		c.fail(field, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
}

func (c *fieldCheck) optionalBetween(field string, v *int, lo, hi int) {
	if v != nil {
		c.between(field, *v, lo, hi)
	}
}

func (c *fieldCheck) nonNegative(field string, v *int) {
	if v != nil && *v < 0 {
		c.fail(field, "must not be negative")
	}
}

func (c *fieldCheck) result() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
