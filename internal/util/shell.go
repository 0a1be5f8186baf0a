// Package util provides common utility functions used across the codebase.
package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single
// quotes. Safe for display or shell use where the string must read literally.
func ShellQuote(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// needsQuoting reports whether an argument would be misread unquoted.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " \t\n\"'$&|;<>()*?#~`\\")
}

// QuoteJoin renders an argv slice as a single copy-pasteable command line,
// quoting only the arguments that need it.
func QuoteJoin(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if needsQuoting(a) {
			parts[i] = ShellQuote(a)
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
