package pdfembed

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParsedEmbed is the normalized form of an embed reference string.
type ParsedEmbed struct {
	LinkText string // percent-decoded, trimmed link text
	Page     int    // 1-based page number, defaults to 1
}

// pdfExtPattern matches a .pdf extension case-insensitively.
var pdfExtPattern = regexp.MustCompile(`(?i)\.pdf$`)

// embedSourceAttrs lists the attributes an embed node may carry its
// reference under, depending on how the host renderer produced it.
var embedSourceAttrs = []string{"src", "data-src", "data-href", "data"}

// ParseEmbedSource parses a raw embed reference into its link text and page.
//
// The reference is split on the first "#": the prefix is the link text
// (percent-decoded and trimmed), the suffix is interpreted as a query string
// whose "page" parameter selects a 1-based page. Malformed page values
// degrade to page 1 rather than failing; fractional values truncate.
func ParseEmbedSource(raw string) ParsedEmbed {
	link := raw
	fragment := ""
	if i := strings.Index(raw, "#"); i >= 0 {
		link = raw[:i]
		fragment = raw[i+1:]
	}

	if decoded, err := url.PathUnescape(link); err == nil {
		link = decoded
	}
	link = strings.TrimSpace(link)

	return ParsedEmbed{
		LinkText: link,
		Page:     parsePageFragment(fragment),
	}
}

// parsePageFragment extracts the page number from an embed fragment.
// Anything that is not a finite number >= 1 yields page 1.
func parsePageFragment(fragment string) int {
	if fragment == "" {
		return 1
	}

	// ParseQuery returns the values it could parse even on error.
	values, _ := url.ParseQuery(fragment)
	pageParam := values.Get("page")
	if pageParam == "" {
		return 1
	}

	page, err := strconv.ParseFloat(pageParam, 64)
	if err != nil || math.IsNaN(page) || math.IsInf(page, 0) || page < 1 {
		return 1
	}
	return int(math.Floor(page))
}

// LooksLikePDF reports whether a reference string denotes a PDF document.
// Used as a cheap filter before incurring resolution cost.
func LooksLikePDF(source string) bool {
	if i := strings.Index(source, "#"); i >= 0 {
		source = source[:i]
	}
	return pdfExtPattern.MatchString(strings.TrimSpace(source))
}

// ExtractEmbedSource reads the embed reference string from a DOM node.
// Returns the first non-empty value among the known source attributes,
// or "" if the node carries none (caller treats that as "not an embed").
func ExtractEmbedSource(n *html.Node) string {
	for _, name := range embedSourceAttrs {
		if v := attrValue(n, name); v != "" {
			return v
		}
	}
	return ""
}
