package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// DescribeClient turns a raw User-Agent into "Browser/version on OS".
// Bots are reported as "bot: <name>".
func DescribeClient(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if ua.Bot() {
		return "bot: " + name
	}

	var b strings.Builder
	b.WriteString(name)
	if version != "" {
		b.WriteString("/")
		b.WriteString(version)
	}
	if os := ua.OS(); os != "" {
		b.WriteString(" on ")
		b.WriteString(os)
	}
	return b.String()
}
