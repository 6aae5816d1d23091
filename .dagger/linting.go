package main

import (
	"context"
	"fmt"

	"dagger/gloss/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts returns the common GolangcilintOpts used by both CheckLint and FixLint.
// It layers golangci-lint on top of goContainer() so the sqlite dev headers,
// CGO, and Go caches are already in place.
func (g *Gloss) lintOpts() dagger.GolangcilintOpts {
	base := g.goContainer().
		WithExec([]string{
			"go",
			"install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
		Config:  g.Source.File(".golangci.yml"),
	}
}

// CheckLint runs golangci-lint against the gloss source code without applying fixes.
func (g *Gloss) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(g.Source, g.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint against the gloss source code with --fix, applying
// automatic fixes where possible, and returns the modified source directory.
func (g *Gloss) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(g.Source, g.lintOpts()).Lint()
}
