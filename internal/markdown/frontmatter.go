package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-gitcontent/internal/content"
)

const delimiter = "---"

var (
	datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	// leadingBlock matches a block that opens on the first byte and whose
	// closing delimiter ends its line.
	leadingBlock = regexp.MustCompile(`^---[ \t]*\r?\n(?:.*\r?\n)*?---[ \t]*\r?\n`)
	quoteChars   = strings.NewReplacer(`"`, "", `'`, "")

	lineFormat = frontmatter.NewFormat(delimiter, delimiter, unmarshalLines)
)

// ParseFrontMatter splits source into metadata and body. found is false when
// the source does not open with a delimited block; metadata is then empty
// and body is the untouched source. Parsing never fails: malformed lines are
// skipped.
func ParseFrontMatter(source []byte) (meta content.Metadata, body []byte, found bool) {
	if !leadingBlock.Match(source) {
		return content.Metadata{}, source, false
	}
	meta = content.Metadata{}
	rest, err := frontmatter.Parse(bytes.NewReader(source), &meta, lineFormat)
	if err != nil || len(rest) >= len(source) {
		return content.Metadata{}, source, false
	}
	return meta, bytes.TrimSpace(rest), true
}

func unmarshalLines(data []byte, v any) error {
	meta, ok := v.(*content.Metadata)
	if !ok || meta == nil {
		return fmt.Errorf("markdown: unsupported front matter target %T", v)
	}
	if *meta == nil {
		*meta = content.Metadata{}
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseLine(line)
		if !ok {
			continue
		}
		(*meta)[key] = value
	}
	return nil
}

func parseLine(line string) (string, any, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", nil, false
	}
	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		return "", nil, false
	}
	key := strings.TrimSpace(trimmed[:idx])
	if key == "" {
		return "", nil, false
	}
	return key, coerce(strings.TrimSpace(trimmed[idx+1:])), true
}

// coerce applies the value rules in order: booleans, date-prefixed strings
// (all quote characters removed), then one optional quote at each end.
func coerce(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if datePrefix.MatchString(value) {
		return quoteChars.Replace(value)
	}
	return stripQuotes(value)
}

func stripQuotes(value string) string {
	if value != "" && (value[0] == '"' || value[0] == '\'') {
		value = value[1:]
	}
	if n := len(value); n > 0 && (value[n-1] == '"' || value[n-1] == '\'') {
		value = value[:n-1]
	}
	return value
}

// SerializeFrontMatter renders meta as a delimited block that
// ParseFrontMatter reads back unchanged. Keys are sorted. Strings are always
// double quoted except unquoted date-prefixed values, which are written raw.
// Keys the dialect cannot express (empty, containing ':' or a newline, or
// starting with '#') are dropped, as are newlines inside values.
func SerializeFrontMatter(meta content.Metadata) []byte {
	keys := make([]string, 0, len(meta))
	for key := range meta {
		if serializableKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	for _, key := range keys {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(serializeValue(meta[key]))
		buf.WriteByte('\n')
	}
	buf.WriteString(delimiter + "\n")
	return buf.Bytes()
}

// ComposeDocument joins a serialized block and a body into file content.
func ComposeDocument(meta content.Metadata, body string) []byte {
	out := SerializeFrontMatter(meta)
	return append(out, body...)
}

func serializableKey(key string) bool {
	return key != "" &&
		key == strings.TrimSpace(key) &&
		!strings.HasPrefix(key, "#") &&
		!strings.ContainsAny(key, ":\r\n")
}

func serializeValue(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		v = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(v)
		if datePrefix.MatchString(v) && v == strings.TrimSpace(v) && !strings.ContainsAny(v, `"'`) {
			return v
		}
		return `"` + v + `"`
	default:
		return `"` + fmt.Sprint(v) + `"`
	}
}
