// Package gitsrc materializes remote source specs as local checkouts so
// the builder can treat them like any other source directory.
package gitsrc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/dynalint/dynalint/internal/artifact"
)

// Checkout fetches the remote source and checks out its pinned revision
// under cacheRoot, returning the checkout directory. The directory is keyed
// by URL and revision, so distinct revisions of one URL do not interfere.
// The checkout itself yields no discovered artifacts; it only produces a
// source tree for the builder.
func Checkout(ctx context.Context, cacheRoot string, spec artifact.RemoteSourceSpec) (string, error) {
	dir := filepath.Join(cacheRoot, checkoutKey(spec))

	repo, err := openOrClone(ctx, dir, spec.URL)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", spec.URL, err)
	}

	if spec.Ref == "" {
		return dir, nil
	}

	if err := repo.FetchContext(ctx, &git.FetchOptions{Tags: git.AllTags}); err != nil &&
		!errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("fetching %s: %w", spec.URL, err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revisionExpr(spec)))
	if err != nil {
		return "", fmt.Errorf("resolving %s of %s: %w", spec.Ref, spec.URL, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("opening worktree of %s: %w", dir, err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", fmt.Errorf("checking out %s of %s: %w", spec.Ref, spec.URL, err)
	}

	slog.DebugContext(ctx, "materialized remote source",
		"url", spec.URL, "ref", spec.Ref, "dir", dir)
	return dir, nil
}

func openOrClone(ctx context.Context, dir, url string) (*git.Repository, error) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return git.PlainOpen(dir)
	}
	return git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url})
}

func revisionExpr(spec artifact.RemoteSourceSpec) string {
	switch spec.Kind {
	case artifact.RefBranch:
		return "refs/remotes/origin/" + spec.Ref
	case artifact.RefTag:
		return "refs/tags/" + spec.Ref
	default:
		return spec.Ref
	}
}

func checkoutKey(spec artifact.RemoteSourceSpec) string {
	sum := sha256.Sum256([]byte(spec.URL + "\x00" + spec.Ref))
	return hex.EncodeToString(sum[:8])
}
