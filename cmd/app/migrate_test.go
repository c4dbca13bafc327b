//go:build !integration

package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestMigrateArgs(t *testing.T) {
	cases := []struct {
		args    []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"up"}, false},
		{[]string{"status"}, false},
		{[]string{"down"}, false},
		{[]string{"down", "3"}, false},
		{[]string{"down", "-1"}, true},
		{[]string{"down", "x"}, true},
		{[]string{"up", "3"}, true},
		{[]string{"redo"}, true},
		{[]string{"down", "1", "2"}, true},
	}
	for _, tc := range cases {
		err := migrateArgs(&cobra.Command{}, tc.args)
		if (err != nil) != tc.wantErr {
			t.Errorf("migrateArgs(%q) err=%v, wantErr=%v", tc.args, err, tc.wantErr)
		}
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{{"serve"}, {"migrate"}, {"seed"}, {"codes", "create"}, {"codes", "list"}, {"codes", "toggle"}} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd == root {
			t.Errorf("command %v not registered: %v", path, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil || root.PersistentFlags().Lookup("dev") == nil {
		t.Error("expected --config and --dev persistent flags")
	}
}

func TestSeedCodesReferenceSeededPrograms(t *testing.T) {
	programs := map[string]bool{}
	for _, p := range demoPrograms {
		programs[p.id] = true
	}
	for _, c := range demoCodes {
		if c.EffectKind == "program" && !programs[c.EffectTarget] {
			t.Errorf("code %s targets unseeded program %q", c.Code, c.EffectTarget)
		}
	}
}
