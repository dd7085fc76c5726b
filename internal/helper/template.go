package helper

import (
	"errors"
	"regexp"
	"strings"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"
)

var (
	// Non-greedy, non-nested {variable} markers.
	placeholderRegex = regexp.MustCompile(`\{([^{}]*)\}`)
	// The reserved name placeholder every template must carry.
	nombreRegex = regexp.MustCompile(`(?i)\{\s*nombre\s*\}`)

	ErrTemplateMissingName = errors.New("template must include a {nombre} placeholder")
)

// RenderTemplate merges one recipient row into the message template.
// Placeholder names are matched case-insensitively against the row columns.
// Unknown placeholders are left in the output verbatim, braces included, so
// operator typos stay visible instead of silently disappearing. Substituted
// values are never rescanned.
func RenderTemplate(template string, row model.RecipientRow) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.ToLower(match[1 : len(match)-1])
		if value, ok := row[name]; ok {
			return value
		}
		return match
	})
}

// ValidateTemplate rejects templates without the required name placeholder.
// Applied once per campaign, before any row is processed.
func ValidateTemplate(template string) error {
	if !nombreRegex.MatchString(template) {
		return ErrTemplateMissingName
	}
	return nil
}
