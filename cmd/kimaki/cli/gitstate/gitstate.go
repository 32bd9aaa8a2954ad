// Package gitstate classifies the git state of a working directory so the
// message hook can announce branch changes and detached checkouts.
package gitstate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Kind describes how HEAD is checked out.
type Kind string

const (
	// KindBranch means HEAD points at a named branch.
	KindBranch Kind = "branch"
	// KindDetached means HEAD points at a commit with no branch.
	KindDetached Kind = "detached-head"
	// KindDetachedSubmodule means a detached HEAD inside a submodule of an
	// enclosing superproject. Submodules are routinely checked out detached,
	// so committing there silently loses work on the next sync.
	KindDetachedSubmodule Kind = "detached-submodule"
)

// State is the classification of a working directory's git state.
// It is recomputed on every call and never mutated.
//
// Two states are "the same" iff their Keys are equal. Label is derived from
// the same discriminator as Key (branch name or short SHA), so callers dedup
// on Key alone.
type State struct {
	// Key is an opaque identity for change detection, "<kind>:<discriminator>".
	Key string `json:"key"`

	// Kind is the checkout classification.
	Kind Kind `json:"kind"`

	// Label is a human-readable description of the state.
	Label string `json:"label"`

	// Warning is advisory text for the user. Empty for the branch kind.
	Warning string `json:"warning,omitempty"`
}

// Resolve classifies the git state of directory.
//
// Returns (nil, false) when the directory is not a git repository or has no
// commits yet. That is an expected outcome, not an error: callers treat
// absence as "no context to report". Individual git query failures are
// likewise treated as missing signals and never propagated.
func Resolve(ctx context.Context, directory string) (*State, bool) {
	// A named branch is the common case.
	if branch, err := runGit(ctx, directory, "symbolic-ref", "--short", "HEAD"); err == nil && branch != "" {
		return &State{
			Key:   "branch:" + branch,
			Kind:  KindBranch,
			Label: branch,
		}, true
	}

	// No symbolic ref: either detached or not a repository at all.
	sha, err := runGit(ctx, directory, "rev-parse", "--short", "HEAD")
	if err != nil || sha == "" {
		return nil, false
	}

	// A non-empty superproject path means this directory is a submodule
	// checked out at a detached commit inside a larger repo.
	if super, err := runGit(ctx, directory, "rev-parse", "--show-superproject-working-tree"); err == nil && super != "" {
		return &State{
			Key:     "detached-submodule:" + sha,
			Kind:    KindDetachedSubmodule,
			Label:   "detached submodule @ " + sha,
			Warning: fmt.Sprintf("This submodule is checked out at detached commit %s. Create or switch to a branch before committing, or your work will not belong to any branch.", sha),
		}, true
	}

	return &State{
		Key:     "detached-head:" + sha,
		Kind:    KindDetached,
		Label:   "detached HEAD @ " + sha,
		Warning: fmt.Sprintf("HEAD is detached at commit %s. Create or switch to a branch before committing, or your work will not belong to any branch.", sha),
	}, true
}

// runGit runs a single git query in directory and returns its trimmed stdout.
func runGit(ctx context.Context, directory string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = directory
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(output)), nil
}
