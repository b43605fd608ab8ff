package publish

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"academy/internal/domain"
)

// Document is the whole-file JSON format.
type Document struct {
	UpdatedAt time.Time             `json:"updatedAt"`
	Courses   []domain.Course       `json:"courses"`
	Previews  []domain.PreviewVideo `json:"previews"`
}

// RenderDocument serializes the catalog as a standalone JSON document.
func RenderDocument(cat domain.Catalog, now time.Time) (string, error) {
	cat = cat.Normalize()
	b, err := marshalIndent(Document{UpdatedAt: now.UTC(), Courses: cat.Courses, Previews: cat.Previews})
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// ParseDocument reads a JSON document back into a catalog.
func ParseDocument(content string) (domain.Catalog, error) {
	var doc Document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return domain.Catalog{}, err
	}
	return domain.Catalog{Courses: doc.Courses, Previews: doc.Previews}.Normalize(), nil
}

// block is one embedded array declaration inside a source module.
type block struct {
	name   string
	header *regexp.Regexp
}

var moduleBlocks = []block{
	{
		name:   "courses",
		header: regexp.MustCompile(`export\s+const\s+COURSES\s*:\s*Course\s*\[\s*\]\s*=\s*`),
	},
	{
		name:   "previews",
		header: regexp.MustCompile(`export\s+const\s+PREVIEWS\s*:\s*PreviewVideo\s*\[\s*\]\s*=\s*`),
	},
}

var errAmbiguous = errors.New("declared more than once")

type span struct {
	block      block
	start, end int // content[start:end] is the whole declaration
	head       string // declaration text up to the opening '['
	body       string
	tail       string // text after the closing ']', up to and including ';' if present
}

// PatchModule replaces the COURSES and PREVIEWS declarations of a source
// module with the catalog's data. Bytes outside the two declarations are
// kept as-is, as are each declaration's own header and terminator; only
// the array literal is rewritten. Blocks that cannot be located are left alone and returned
// in missing; finding neither is an error.
func PatchModule(content string, cat domain.Catalog) (patched string, missing []string, err error) {
	cat = cat.Normalize()
	values := map[string]any{"courses": cat.Courses, "previews": cat.Previews}

	var spans []span
	for _, b := range moduleBlocks {
		sp, ok, err := locate(content, b)
		if err != nil {
			return "", nil, newError(KindPatch, fmt.Sprintf("%s block: %v", b.name, err), err)
		}
		if !ok {
			missing = append(missing, b.name)
			continue
		}
		spans = append(spans, sp)
	}
	if len(spans) == 0 {
		return "", missing, newError(KindPatch, "no COURSES or PREVIEWS declaration found", nil)
	}
	if len(spans) == 2 && spans[0].start < spans[1].end && spans[1].start < spans[0].end {
		return "", missing, newError(KindPatch, "COURSES and PREVIEWS declarations overlap", nil)
	}

	// Replace back to front so earlier offsets stay valid.
	if len(spans) == 2 && spans[0].start < spans[1].start {
		spans[0], spans[1] = spans[1], spans[0]
	}
	out := content
	for _, sp := range spans {
		data, err := marshalIndent(values[sp.block.name])
		if err != nil {
			return "", missing, newError(KindPatch, "encode "+sp.block.name, err)
		}
		out = out[:sp.start] + sp.head + string(data) + sp.tail + out[sp.end:]
	}
	return out, missing, nil
}

// ExtractModule reads the catalog back out of a module whose blocks are
// plain JSON, as PatchModule writes them. ok is false when either block
// is missing or is not JSON.
func ExtractModule(content string) (domain.Catalog, bool) {
	var cat domain.Catalog
	for _, b := range moduleBlocks {
		sp, found, err := locate(content, b)
		if err != nil || !found {
			return domain.Catalog{}, false
		}
		var dst any = &cat.Courses
		if b.name == "previews" {
			dst = &cat.Previews
		}
		if err := json.Unmarshal([]byte(sp.body), dst); err != nil {
			return domain.Catalog{}, false
		}
	}
	return cat.Normalize(), true
}

func locate(content string, b block) (span, bool, error) {
	locs := b.header.FindAllStringIndex(content, 2)
	switch len(locs) {
	case 0:
		return span{}, false, nil
	case 1:
	default:
		return span{}, false, errAmbiguous
	}

	start, open := locs[0][0], locs[0][1]
	if open >= len(content) || content[open] != '[' {
		return span{}, false, nil
	}
	closeAt, ok := matchBracket(content, open)
	if !ok {
		return span{}, false, nil
	}

	end := closeAt + 1
	j := end
	for j < len(content) && (content[j] == ' ' || content[j] == '\t') {
		j++
	}
	if j < len(content) && content[j] == ';' {
		end = j + 1
	}
	return span{
		block: b,
		start: start,
		end:   end,
		head:  content[start:open],
		body:  content[open : closeAt+1],
		tail:  content[closeAt+1 : end],
	}, true, nil
}

// matchBracket returns the index of the ']' closing the '[' at open.
// Brackets inside string literals and comments are ignored.
func matchBracket(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'', '`':
			i = skipString(s, i)
			if i < 0 {
				return 0, false
			}
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				nl := strings.IndexByte(s[i:], '\n')
				if nl < 0 {
					return 0, false
				}
				i += nl
			} else if i+1 < len(s) && s[i+1] == '*' {
				endc := strings.Index(s[i+2:], "*/")
				if endc < 0 {
					return 0, false
				}
				i += 2 + endc + 1
			}
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
			if depth == 0 {
				if c != ']' {
					return 0, false
				}
				return i, true
			}
			if depth < 0 {
				return 0, false
			}
		}
	}
	return 0, false
}

// skipString returns the index of the quote closing the literal that
// starts at i, or -1 if it never closes.
func skipString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j
		case '\n':
			if quote != '`' {
				return -1
			}
		}
	}
	return -1
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
