//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const binDir = "bin"

type Build mg.Namespace

// Builds every command into bin/.
func (Build) All() {
	mg.SerialDeps(Build.Demo, Build.Burnmap)
}

// Builds the windowed demo into bin/burnfade.
func (Build) Demo() error {
	return goBuild("burnfade")
}

// Builds the headless burn-map baker into bin/burnmap.
func (Build) Burnmap() error {
	return goBuild("burnmap")
}

func goBuild(name string) error {
	out := filepath.Join(binDir, name)
	if _, err := executeCmd("go", withArgs("build", "-o", out, "./cmd/"+name), withStream()); err != nil {
		return fmt.Errorf("build %s: %w", name, err)
	}
	return nil
}
