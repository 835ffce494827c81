package dwd

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// matchAnchors scans an Apache-style index page for <a href> targets that
// start with prefix and end with suffix. Duplicates are dropped, document
// order is kept.
func matchAnchors(page []byte, prefix, suffix string) []string {
	z := html.NewTokenizer(bytes.NewReader(page))
	seen := make(map[string]bool)
	var names []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return names
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					href := strings.TrimSpace(string(val))
					if strings.HasPrefix(href, prefix) && strings.HasSuffix(href, suffix) && !seen[href] {
						seen[href] = true
						names = append(names, href)
					}
				}
				if !more {
					break
				}
			}
		}
	}
}
