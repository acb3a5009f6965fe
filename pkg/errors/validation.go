package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleLength bounds widget titles in runes.
const MaxTitleLength = 120

// ValidateWidgetID validates a widget id received from a client.
//
// Ids are generated by the engine, so the rules only guard against
// garbage and injection:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 128 characters
func ValidateWidgetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "widget id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "widget id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "widget id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "widget id cannot contain path separators")
	}
	return nil
}

// ValidateTitle validates a widget title. Titles are free text but must be
// printable and bounded.
func ValidateTitle(title string) error {
	if !utf8.ValidString(title) {
		return New(ErrCodeInvalidInput, "title is not valid UTF-8")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", MaxTitleLength)
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains control characters")
		}
	}
	return nil
}

// breakpointNameRegex matches breakpoint names such as "lg" or "wide-2".
var breakpointNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// ValidateBreakpointName validates a breakpoint name.
func ValidateBreakpointName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "breakpoint name cannot be empty")
	}
	if !breakpointNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid breakpoint name: %q", name)
	}
	return nil
}

// storageKeyRegex matches keys usable by every storage backend, including
// file names and redis keys.
var storageKeyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateStorageKey validates the key a document is stored under.
func ValidateStorageKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "storage key cannot be empty")
	}
	if len(key) > 200 {
		return New(ErrCodeInvalidInput, "storage key too long (max 200 characters)")
	}
	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidInput, "storage key cannot contain path traversal sequences (..)")
	}
	if !storageKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidInput, "invalid storage key: %q", key)
	}
	return nil
}
