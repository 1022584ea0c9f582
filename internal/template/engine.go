// Package template renders notarial document skeletons against flat
// key-value data and converts amounts into Spanish legal wording.
package template

import (
	"regexp"
	"strings"
)

const (
	openPrefix = "{{#if"
	closeTag   = "{{/if}}"
	tagEnd     = "}}"
)

var (
	variablePattern = regexp.MustCompile(`\{\{\s*([^{}#/|\s]+)\s*(?:\|\s*([A-Za-z_]+)\s*)?\}\}`)
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

// ValidationResult lists required keys without a usable value.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

// Render resolves conditional blocks, substitutes variables and collapses
// blank-line runs. It never fails: unknown keys render empty and unbalanced
// markers are kept as literal text.
func Render(tpl string, data map[string]string) string {
	out := resolveConditionals(tpl, data)
	out = substitute(out, data)
	return blankRunPattern.ReplaceAllString(out, "\n\n")
}

// Validate reports every required key whose value is absent or blank.
func Validate(data map[string]string, required []string) ValidationResult {
	missing := []string{}
	for _, key := range required {
		if !truthy(data, key) {
			missing = append(missing, key)
		}
	}
	return ValidationResult{Valid: len(missing) == 0, Missing: missing}
}

func truthy(data map[string]string, key string) bool {
	v, ok := data[key]
	return ok && strings.TrimSpace(v) != ""
}

// resolveConditionals walks the text left to right. Each opening tag is
// paired with its matching close by depth counting; the body of a true
// block is resolved recursively, a false block is dropped whole.
func resolveConditionals(s string, data map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		start, key, bodyStart, ok := nextOpenTag(s, i)
		if !ok {
			b.WriteString(s[i:])
			break
		}
		bodyEnd, blockEnd, matched := matchClose(s, bodyStart)
		if !matched {
			// unbalanced: keep the tag literally and keep scanning inside it
			b.WriteString(s[i:bodyStart])
			i = bodyStart
			continue
		}
		b.WriteString(s[i:start])
		if truthy(data, key) {
			b.WriteString(resolveConditionals(s[bodyStart:bodyEnd], data))
		}
		i = blockEnd
	}
	return b.String()
}

// nextOpenTag finds the next well-formed "{{#if KEY}}" at or after from.
func nextOpenTag(s string, from int) (start int, key string, bodyStart int, ok bool) {
	for from < len(s) {
		idx := strings.Index(s[from:], openPrefix)
		if idx < 0 {
			return 0, "", 0, false
		}
		start = from + idx
		rest := s[start+len(openPrefix):]
		end := strings.Index(rest, tagEnd)
		if end > 0 && isSpace(rest[0]) {
			key = strings.TrimSpace(rest[:end])
			if key != "" && !strings.ContainsAny(key, "{} ") {
				return start, key, start + len(openPrefix) + end + len(tagEnd), true
			}
		}
		from = start + len(openPrefix)
	}
	return 0, "", 0, false
}

// matchClose returns the span of the body and the end of the closing tag
// for a block whose body starts at from.
func matchClose(s string, from int) (bodyEnd, blockEnd int, ok bool) {
	depth := 1
	pos := from
	for pos < len(s) {
		closeIdx := strings.Index(s[pos:], closeTag)
		if closeIdx < 0 {
			return 0, 0, false
		}
		openAt, _, openBody, hasOpen := nextOpenTag(s, pos)
		if hasOpen && openAt < pos+closeIdx {
			depth++
			pos = openBody
			continue
		}
		depth--
		if depth == 0 {
			return pos + closeIdx, pos + closeIdx + len(closeTag), true
		}
		pos += closeIdx + len(closeTag)
	}
	return 0, 0, false
}

func substitute(s string, data map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := variablePattern.FindStringSubmatch(match)
		value := data[groups[1]]
		switch strings.ToLower(groups[2]) {
		case "uppercase":
			return strings.ToUpper(value)
		case "lowercase":
			return strings.ToLower(value)
		default:
			return value
		}
	})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
