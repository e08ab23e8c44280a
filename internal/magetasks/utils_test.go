package magetasks

import (
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCommandNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "exec.ErrNotFound", err: exec.ErrNotFound, want: true},
		{name: "wrapped exec.ErrNotFound", err: fmt.Errorf("running lint: %w", exec.ErrNotFound), want: true},
		{name: "executable file not found", err: errors.New("executable file not found"), want: true},
		{name: "no such file or directory", err: errors.New("no such file or directory"), want: true},
		{name: "other error", err: errors.New("exit status 1"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsCommandNotFound(tt.err))
		})
	}
}
