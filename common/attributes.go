package common

import (
	"encoding/xml"
	"strings"
)

// Attributes is an ordered list of XML attributes captured with the `xml:",any,attr"` tag.
// It gives resource descriptions (techniques, precache records) name-based access to attribute
// values while preserving document order when written back out.
type Attributes []xml.Attr

// Has reports whether an attribute with the given local name is present.
func (a Attributes) Has(name string) bool {
	for _, attr := range a {
		if attr.Name.Local == name {
			return true
		}
	}
	return false
}

// String returns the value of the named attribute, or an empty string if it is absent.
//
// Parameters:
//   - name: the attribute's local name
//
// Returns:
//   - string: the raw attribute value
func (a Attributes) String(name string) string {
	for _, attr := range a {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// Lower returns the named attribute value trimmed and lower-cased. Used for enum-like
// attributes whose vocabulary is case-insensitive.
func (a Attributes) Lower(name string) string {
	return strings.ToLower(strings.TrimSpace(a.String(name)))
}

// Bool returns the named attribute parsed with ParseBool. Absent attributes are false.
func (a Attributes) Bool(name string) bool {
	return ParseBool(a.String(name))
}

// Set replaces the value of the named attribute, appending it if it is not present yet.
//
// Parameters:
//   - name: the attribute's local name
//   - value: the value to store
func (a *Attributes) Set(name, value string) {
	for i := range *a {
		if (*a)[i].Name.Local == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// ParseBool converts a loosely formatted boolean string. The first non-space character decides:
// '1', 't' or 'y' (any case) is true, anything else is false.
//
// Parameters:
//   - s: the string to parse
//
// Returns:
//   - bool: the parsed value
func ParseBool(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch s[0] {
	case '1', 't', 'T', 'y', 'Y':
		return true
	}
	return false
}
