//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Runs the unit tests with the race detector.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream())
	return err
}

// Runs go vet over the module.
func Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Bakes burn maps at a few progress values into bin/maps/ using the CPU reference.
func Bake() error {
	mg.Deps(Build.Burnmap)
	for _, p := range []string{"0.25", "0.5", "0.75"} {
		out := filepath.Join(binDir, "maps", fmt.Sprintf("burnmap_%s.bmp", p))
		if err := mkdirAll(filepath.Dir(out)); err != nil {
			return err
		}
		args := []string{"-progress", p, "-out", out}
		if exists("burnfade.toml") {
			args = append(args, "-config", "burnfade.toml")
		}
		if _, err := executeCmd(filepath.Join(binDir, "burnmap"), withArgs(args...), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Builds and runs the demo with the repository config.
func Run() error {
	mg.Deps(Build.Demo)
	_, err := executeCmd(filepath.Join(binDir, "burnfade"), withArgs("-config", "burnfade.toml"), withStream())
	return err
}
