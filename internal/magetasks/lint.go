package magetasks

import (
	"errors"
	"fmt"

	"github.com/magefile/mage/sh"
)

// LintAll runs every linter. Linters that are not installed are skipped.
func LintAll() error {
	var errs []error
	for _, lint := range []func() error{LintFormat, LintVet, LintGolangci} {
		if err := lint(); err != nil && !IsCommandNotFound(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat fails when gofmt would change any file.
func LintFormat() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}

// LintVet runs go vet.
func LintVet() error {
	return sh.RunV("go", "vet", "./...")
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	err := sh.RunV("golangci-lint", "run", "--timeout=5m", "./...")
	if IsCommandNotFound(err) {
		PrintWarning("golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
	}
	return err
}
