package cli

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// currentBranch returns the name of the branch checked out in the current
// directory. Returns an error if in detached HEAD state or if not in a git
// repository.
func currentBranch() (string, error) {
	repo, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", errors.New("not on a branch (detached HEAD)")
	}

	return head.Name().Short(), nil
}
