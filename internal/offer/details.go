package offer

import (
	"encoding/json"
	"fmt"
)

// Tag identifies one of the five listing attributes.
type Tag string

const (
	TagBrand     Tag = "BRAND"
	TagSize      Tag = "SIZE"
	TagCondition Tag = "CONDITION"
	TagColor     Tag = "COLOR"
	TagCity      Tag = "CITY"
)

// Tags lists the attribute tags in their stored order.
var Tags = [...]Tag{TagBrand, TagSize, TagCondition, TagColor, TagCity}

// Details holds the five listing attributes. An unset attribute is the
// empty string; its tag is still serialised.
type Details struct {
	Brand     string
	Size      string
	Condition string
	Color     string
	City      string
}

// Value returns the value stored under tag.
func (d Details) Value(tag Tag) string {
	switch tag {
	case TagBrand:
		return d.Brand
	case TagSize:
		return d.Size
	case TagCondition:
		return d.Condition
	case TagColor:
		return d.Color
	case TagCity:
		return d.City
	}
	return ""
}

func (d *Details) set(tag Tag, v string) {
	switch tag {
	case TagBrand:
		d.Brand = v
	case TagSize:
		d.Size = v
	case TagCondition:
		d.Condition = v
	case TagColor:
		d.Color = v
	case TagCity:
		d.City = v
	}
}

// MarshalJSON renders the attributes as five single-key objects in tag order.
func (d Details) MarshalJSON() ([]byte, error) {
	entries := make([]map[Tag]string, len(Tags))
	for i, tag := range Tags {
		entries[i] = map[Tag]string{tag: d.Value(tag)}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON accepts only the five-entry, fixed-order form.
func (d *Details) UnmarshalJSON(data []byte) error {
	var entries []map[Tag]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	if len(entries) != len(Tags) {
		return fmt.Errorf("product_details: expected %d entries, got %d", len(Tags), len(entries))
	}
	var out Details
	for i, tag := range Tags {
		v, ok := entries[i][tag]
		if !ok || len(entries[i]) != 1 {
			return fmt.Errorf("product_details: entry %d must be {%q: value}", i, tag)
		}
		out.set(tag, v)
	}
	*d = out
	return nil
}
