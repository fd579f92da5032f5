package discord

import (
	"regexp"
	"strings"
)

var roleMention = regexp.MustCompile(`<@&(\d+)>`)

// zero-width space, breaks a ping without changing what users read
const zws = "\u200b"

// SanitizeMentions neutralizes @everyone, @here and role pings in user
// supplied text. roleName resolves a role id to its display name; unknown
// roles render as "@deleted-role". User mentions are kept.
func SanitizeMentions(s string, roleName func(id string) string) string {
	s = strings.ReplaceAll(s, "@everyone", "@"+zws+"everyone")
	s = strings.ReplaceAll(s, "@here", "@"+zws+"here")
	return roleMention.ReplaceAllStringFunc(s, func(m string) string {
		id := roleMention.FindStringSubmatch(m)[1]
		if roleName != nil {
			if name := roleName(id); name != "" {
				return "@" + zws + name
			}
		}
		return "@deleted-role"
	})
}
