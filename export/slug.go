package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/toothbrush/confluence-tree/confluence"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func canonicalise(title string) (string, error) {
	str := nonAlphanumeric.ReplaceAllString(title, " ")
	str = strings.ToLower(str)
	str = strings.Join(strings.Fields(str), "-")

	if len(str) > 101 {
		str = str[:100]
	}

	str = strings.Trim(str, "-")

	if len(str) < 2 {
		return "", fmt.Errorf("export: slug too short: title was '%s'", title)
	}

	return str, nil
}

// slugFor never fails: titles that don't canonicalise fall back to the node ID.
func slugFor(n *confluence.ContentNode) string {
	slug, err := canonicalise(n.Title)
	if err != nil {
		return n.ID
	}
	return slug
}
