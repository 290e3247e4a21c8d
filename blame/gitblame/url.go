package gitblame

import "strings"

// commitURL maps an origin remote plus a changeset to a browsable commit
// page. Unknown hosts yield "".
func commitURL(remote, changeset string) string {
	base := normalizeRemote(remote)
	if base == "" || changeset == "" {
		return ""
	}
	host := base[len("https://"):]
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	switch host {
	case "github.com":
		return base + "/commit/" + changeset
	case "gitlab.com":
		return base + "/-/commit/" + changeset
	case "bitbucket.org":
		return base + "/commits/" + changeset
	default:
		return ""
	}
}

// normalizeRemote turns ssh and https remote forms into a https base URL
// without the .git suffix.
func normalizeRemote(remote string) string {
	remote = strings.TrimSuffix(strings.TrimSpace(remote), ".git")
	if remote == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(remote, "https://"); ok {
		return "https://" + rest
	}
	if rest, ok := strings.CutPrefix(remote, "ssh://git@"); ok {
		return "https://" + rest
	}
	if rest, ok := strings.CutPrefix(remote, "git@"); ok {
		// git@host:owner/repo -> https://host/owner/repo
		return "https://" + strings.Replace(rest, ":", "/", 1)
	}
	return ""
}
