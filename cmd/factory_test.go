package cmd

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestFactoryBindPipelineFlags(t *testing.T) {
	f := NewFactory()

	flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
	f.bindPipelineFlags(flags)

	if err := flags.Parse([]string{"--fresh", "--no-browser"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !f.Fresh {
		t.Error("expected Fresh to be set")
	}
	if !f.NoBrowser {
		t.Error("expected NoBrowser to be set")
	}
	if f.NoCache {
		t.Error("expected NoCache to stay unset")
	}
}

func TestMergeOverwritesOnlyWhenSet(t *testing.T) {
	dst := "file-value"
	merge(&dst, "")
	if dst != "file-value" {
		t.Errorf("empty override changed dst to %q", dst)
	}

	merge(&dst, "flag-value")
	if dst != "flag-value" {
		t.Errorf("override not applied, dst = %q", dst)
	}
}
