// Package legal carries the terms of service and privacy policy shown in
// the footer of the academy.
package legal

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed terms.txt
var terms string

//go:embed privacy.txt
var privacy string

type Document struct {
	Name  string
	Title string
	Body  string
}

var documents = map[string]Document{
	"terms":   {Name: "terms", Title: "이용약관", Body: terms},
	"privacy": {Name: "privacy", Title: "개인정보 처리방침", Body: privacy},
}

// Lookup finds a document by name, case-insensitively.
func Lookup(name string) (Document, error) {
	d, ok := documents[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Document{}, fmt.Errorf("legal: unknown document %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

func Names() []string {
	names := make([]string, 0, len(documents))
	for n := range documents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// EffectiveDate is the 시행일자 line at the end of the document.
func (d Document) EffectiveDate() string {
	for _, line := range strings.Split(strings.TrimSpace(d.Body), "\n") {
		if v, ok := strings.CutPrefix(line, "시행일자:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
