// Package util names the identifiers of generated Go code.
package util

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MangledIdent returns a deterministic Go identifier for the intermediary
// value name of the sub-pattern at path in case index.
//
// Generated code declares the names bound by patterns next to these, so
// they carry a prefix that pattern variables are unlikely to use.
func MangledIdent(index int, path []int, name string) string {
	sb := strings.Builder{}
	sb.WriteString("rp_")
	sb.WriteString(name)
	sb.WriteString("_")
	sb.WriteString(strconv.Itoa(index))
	for _, p := range path {
		sb.WriteString("_")
		sb.WriteString(strconv.Itoa(p))
	}
	return sb.String()
}

// Exported upper-cases the first letter of name, so that it is an exported Go identifier
func Exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
