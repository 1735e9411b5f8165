package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/smallbiznis/docflow/internal/numbering/domain"
)

var (
	seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)
	seqAnyRe = regexp.MustCompile(`\{SEQ\d*\}`)
)

const DefaultNumberTemplate = "{CODE}-{YYYY}/{SEQ4}"

// FormatNumber renders a document number from template, type code, year and
// sequence. Supported tokens: {CODE}, {YYYY}, {YY}, {SEQ} and {SEQn} which
// pads the sequence with zeros to at least n digits.
func FormatNumber(template, code string, year int, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("%w: template is empty", domain.ErrInvalidTemplate)
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid document sequence: %d", seq)
	}
	if year <= 0 || year > 9999 {
		return "", fmt.Errorf("%w: %d", domain.ErrInvalidYear, year)
	}

	yyyy := fmt.Sprintf("%04d", year)

	out := template
	out = strings.ReplaceAll(out, "{CODE}", code)
	out = strings.ReplaceAll(out, "{YYYY}", yyyy)
	out = strings.ReplaceAll(out, "{YY}", yyyy[2:])
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("%w: unresolved token in %q", domain.ErrInvalidTemplate, out)
	}

	return out, nil
}

// ValidateTemplate checks that a template yields distinct numbers per type,
// year and sequence.
func ValidateTemplate(template string) error {
	if !strings.Contains(template, "{CODE}") {
		return fmt.Errorf("%w: missing {CODE}", domain.ErrInvalidTemplate)
	}
	if !strings.Contains(template, "{YYYY}") && !strings.Contains(template, "{YY}") {
		return fmt.Errorf("%w: missing {YYYY} or {YY}", domain.ErrInvalidTemplate)
	}
	if !seqAnyRe.MatchString(template) {
		return fmt.Errorf("%w: missing {SEQ} or {SEQn}", domain.ErrInvalidTemplate)
	}
	_, err := FormatNumber(template, "X", 2000, 1)
	return err
}
