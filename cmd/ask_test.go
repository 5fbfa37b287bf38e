package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tules/tules/cli"
	"github.com/tules/tules/errors"
)

func TestReadPrompt(t *testing.T) {
	prompt, err := readPrompt([]string{"what is 2+2?"}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "what is 2+2?", prompt)

	prompt, err = readPrompt(nil, true, strings.NewReader("  write a haiku \n"))
	require.NoError(t, err)
	assert.Equal(t, "write a haiku", prompt)

	_, err = readPrompt(nil, false, strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))

	_, err = readPrompt(nil, true, strings.NewReader("   \n"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestAskRunsProviderInForeground(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	binDir := t.TempDir()
	script := "#!/bin/sh\necho instant answer\n"
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "claude"), []byte(script), 0755))
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	root := cli.NewStandardCommand("tules", "test harness")
	root.AddCommand(NewAskCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"ask", "what is 2+2?"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Using claude")
	assert.Contains(t, out.String(), "instant answer")
}
