package util

import (
	"path/filepath"
	"strings"
)

const JackFileExtension = ".jack"

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsNumberString reports whether s is a non-empty run of decimal digits.
func IsNumberString(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsNumber(s[i]) {
			return false
		}
	}
	return true
}

// IsLabelName reports whether s can be used as a vm label or routine name:
// letters, digits, underscore, dot, colon and dollar, not starting with a digit.
func IsLabelName(s string) bool {
	if len(s) == 0 || !(IsLetterOrUnderscore(s[0]) || isLabelPunct(s[0])) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsLetterOrUnderscoreOrNumber(s[i]) && !isLabelPunct(s[i]) {
			return false
		}
	}
	return true
}

func isLabelPunct(b byte) bool {
	return b == '.' || b == ':' || b == '$'
}

func IsJackFile(fileName string) bool {
	return filepath.Ext(fileName) == JackFileExtension
}

// ReplaceExtension swaps the extension of path, `Main.jack` -> `Main.vm`.
func ReplaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
