// Package gitblame attributes buffer lines by shelling out to the git
// executable. The interface in package blame allows alternative
// implementations (other VCSes, remote services) without changing callers.
package gitblame

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/massimiliano76/nuclide/blame"
	"github.com/massimiliano76/nuclide/editor"
)

// changesetLen is the abbreviated hash length rendered in the gutter.
const changesetLen = 8

// boundaryHash marks lines git cannot attribute to a commit.
const boundaryHash = "0000000000000000000000000000000000000000"

// Provider runs git blame for the editor's document.
type Provider struct {
	// Dir is the working directory git runs in. Empty means the directory
	// of the file being attributed.
	Dir string

	// Git is the executable name, "git" by default.
	Git string
}

// New builds a provider rooted at dir.
func New(dir string) *Provider {
	return &Provider{Dir: dir}
}

// Attribute runs `git blame --line-porcelain` and parses per-line authorship.
func (p *Provider) Attribute(ctx context.Context, ed editor.Host) (blame.Snapshot, error) {
	path := ed.Path()
	if path == "" {
		return nil, errors.New("editor has no path")
	}
	out, err := p.run(ctx, filepath.Dir(path), "blame", "--line-porcelain", "--", path)
	if err != nil {
		return nil, fmt.Errorf("git blame %s: %w", path, err)
	}
	return parsePorcelain(bytes.NewReader(out))
}

// Head reports the current HEAD revision, used as the cache key for
// snapshots.
func (p *Provider) Head(ctx context.Context) (string, error) {
	out, err := p.run(ctx, p.Dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse HEAD: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ResolveURL derives a commit URL for the changeset from the origin remote.
// An unknown or missing remote yields an empty URL with a nil error.
func (p *Provider) ResolveURL(ctx context.Context, path, changeset string) (string, error) {
	dir := p.Dir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	out, err := p.run(ctx, dir, "config", "--get", "remote.origin.url")
	if err != nil {
		// No origin remote configured: not an error, just no URL.
		return "", nil
	}
	return commitURL(strings.TrimSpace(string(out)), changeset), nil
}

func (p *Provider) run(ctx context.Context, fallbackDir string, args ...string) ([]byte, error) {
	git := p.Git
	if git == "" {
		git = "git"
	}
	cmd := exec.CommandContext(ctx, git, args...)
	if p.Dir != "" {
		cmd.Dir = p.Dir
	} else {
		cmd.Dir = fallbackDir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// parsePorcelain reads `git blame --line-porcelain` output. Each line of the
// file produces a header `<sha> <orig-line> <final-line> [count]`, a block of
// `key value` tags including `author`, and the tab-prefixed content line.
func parsePorcelain(r io.Reader) (blame.Snapshot, error) {
	snapshot := make(blame.Snapshot)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sha, author string
	line := -1
	for scanner.Scan() {
		text := scanner.Text()
		if strings.HasPrefix(text, "\t") {
			// Content line closes the current entry.
			if line < 0 {
				continue
			}
			attr := blame.Attribution{Author: author}
			if sha != boundaryHash && len(sha) >= changesetLen {
				attr.Changeset = sha[:changesetLen]
			}
			snapshot[line] = attr
			sha, author, line = "", "", -1
			continue
		}
		if sha == "" {
			fields := strings.Fields(text)
			if len(fields) < 3 || len(fields[0]) != len(boundaryHash) {
				continue
			}
			final, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("malformed blame header %q", text)
			}
			sha = fields[0]
			line = final - 1 // git reports 1-based lines
			continue
		}
		if rest, ok := strings.CutPrefix(text, "author "); ok {
			author = rest
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
