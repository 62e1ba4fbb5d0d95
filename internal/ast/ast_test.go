package ast_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ncdsv/ncdsv/internal/ast"
)

func TestLoadRoundTripsThroughJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"interfaces": [
			{
				"name": "eth0",
				"statements": [
					{"names": ["hold"], "args": []},
					{
						"names": ["var"],
						"args": [{"kind": "varref", "mod_name": "hold", "var_name": ""}],
						"name": "mirrored"
					}
				]
			}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg, err := ast.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Interfaces) != 1 {
		t.Fatalf("want 1 interface, got %d", len(cfg.Interfaces))
	}
	iface := cfg.Interfaces[0]
	if iface.Name != "eth0" || len(iface.Statements) != 2 {
		t.Fatalf("unexpected interface: %+v", iface)
	}
	second := iface.Statements[1]
	if second.Name != "mirrored" {
		t.Fatalf("want exported name %q, got %q", "mirrored", second.Name)
	}
	if second.Args[0].Kind != ast.ArgVarRef || second.Args[0].ModName != "hold" {
		t.Fatalf("unexpected arg: %+v", second.Args[0])
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := ast.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("want an error for a missing config file")
	}
}

func TestArgKindRejectsUnknownJSONValue(t *testing.T) {
	var k ast.ArgKind
	if err := k.UnmarshalJSON([]byte(`"bogus"`)); err == nil {
		t.Fatal("want an error for an unrecognized ArgKind string")
	}
}
