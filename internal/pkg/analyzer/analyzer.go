// Package analyzer turns uploaded files into description strings.
//
// Text extraction and tabular analysis run in process. OCR, image
// classification and audio feature extraction are delegated to HTTP
// sidecars that read the file from a shared path.
package analyzer

import "unicode/utf8"

// Truncate returns the first n runes of s and whether s was longer.
func Truncate(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}
