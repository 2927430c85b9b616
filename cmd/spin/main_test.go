package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionFlagShorthand(t *testing.T) {
	for _, arg := range []string{"-V", "--version"} {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{arg})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("%s: %v", arg, err)
		}
		if !strings.Contains(out.String(), version) {
			t.Errorf("%s output %q does not contain version %q", arg, out.String(), version)
		}
	}
}
