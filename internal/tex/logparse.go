package tex

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/texkit/texkit/internal/report"
)

// lineRefPattern matches the "l.<n> <context>" reference TeX prints after
// an error message.
var lineRefPattern = regexp.MustCompile(`^l\.(\d+)\s?(.*)$`)

// fileLinePattern matches file-line-error style diagnostics,
// e.g. "./paper.tex:12: Undefined control sequence."
var fileLinePattern = regexp.MustCompile(`^(?:\./)?([^:\s]+\.(?:tex|sty|cls|bib)):(\d+):\s*(.+)$`)

// lineRefLookahead bounds how far past a "!" error line the parser scans
// for its l.<n> reference.
const lineRefLookahead = 10

// ParseLog extracts structured issues from a TeX console transcript.
// Parsing is best-effort: unrecognized output yields no issues and never
// an error, since the transcript itself remains the primary diagnostic.
func ParseLog(log string) []report.Issue {
	var issues []report.Issue

	lines := strings.Split(log, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")

		if m := fileLinePattern.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			issues = append(issues, report.Issue{
				File:    m[1],
				Line:    n,
				Message: m[3],
			})
			continue
		}

		if rest, ok := strings.CutPrefix(line, "! "); ok {
			issue := report.Issue{Message: strings.TrimSpace(rest)}

			// TeX prints the offending line a few lines below the message.
			for j := i + 1; j < len(lines) && j <= i+lineRefLookahead; j++ {
				if m := lineRefPattern.FindStringSubmatch(strings.TrimRight(lines[j], "\r")); m != nil {
					issue.Line, _ = strconv.Atoi(m[1])
					issue.Context = strings.TrimSpace(m[2])
					i = j
					break
				}
			}
			issues = append(issues, issue)
		}
	}

	return issues
}
