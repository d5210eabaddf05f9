// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resource

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taibuivan/panelkit/pkg/slug"
)

// Names holds the labels derived from a resource's Go type name.
type Names struct {
	Name          string // ProductResource
	Label         string // Products
	SingularLabel string // Product
	URIKey        string // products
}

// TypeName returns the simple name of r's concrete type.
func TypeName(r any) string {
	t := reflect.TypeOf(r)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// DeriveNames strips a "Resource" suffix from name and converts casing:
// "BlogPostResource" gives "Blog Posts", "Blog Post" and "blog-posts".
func DeriveNames(name string) Names {
	words := splitWords(strings.TrimSuffix(name, "Resource"))
	if len(words) == 0 {
		words = []string{name}
	}

	title := cases.Title(language.English, cases.NoLower)
	for i, word := range words {
		words[i] = title.String(word)
	}
	singular := strings.Join(words, " ")

	plural := append([]string(nil), words...)
	plural[len(plural)-1] = inflection.Plural(plural[len(plural)-1])
	label := strings.Join(plural, " ")

	return Names{
		Name:          name,
		Label:         label,
		SingularLabel: singular,
		URIKey:        slug.From(label),
	}
}

// splitWords splits CamelCase, keeping acronyms together ("HTTPLog" → HTTP, Log).
func splitWords(s string) []string {
	runes := []rune(s)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		current, previous := runes[i], runes[i-1]
		boundary := unicode.IsUpper(current) && (unicode.IsLower(previous) ||
			(i+1 < len(runes) && unicode.IsUpper(previous) && unicode.IsLower(runes[i+1])))
		if boundary || (unicode.IsDigit(current) && !unicode.IsDigit(previous)) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}
