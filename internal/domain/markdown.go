package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const markdownTableHeader = "| |Message|\n|-|-|\n"

var validatorLineRe = regexp.MustCompile(`^publiccode\.yml:(\d+):\d+: (.*?): (.*)`)

// levelIcons maps validator levels to the icon shown in the first column.
var levelIcons = map[string]string{
	"error":   "❌",
	"warning": ":warning:",
}

// ToMarkdown renders validator output as a markdown table, one row per line.
// Lines in the "publiccode.yml:LINE:COL: LEVEL: MESSAGE" form link to the
// offending line in repoURL; anything else is rendered verbatim.
func ToMarkdown(errorOutput, repoURL string) string {
	var b strings.Builder
	b.WriteString(markdownTableHeader)

	repoURL = strings.TrimSuffix(repoURL, ".git")

	for _, line := range splitLines(errorOutput) {
		m := validatorLineRe.FindStringSubmatch(line)
		if m == nil {
			fmt.Fprintf(&b, "|❌|`%s`|\n", line)
			continue
		}

		lineNum, level, msg := m[1], m[2], m[3]
		fmt.Fprintf(&b, "|%s [`%s:%s`](%s/blob/HEAD/%s#L%s)| `%s`|\n",
			levelIcons[level], PubliccodeFile, lineNum, repoURL, PubliccodeFile, lineNum, msg)
	}

	return b.String()
}

// splitLines splits on line boundaries without yielding a trailing empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
