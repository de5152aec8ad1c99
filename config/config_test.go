package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadPublic(t *testing.T) {
	path := writeTemp(t, "pub.json", `{
		"alice": {"key": "123456789"},
		"bob_b": {"key": "987654321", "host": "10.0.0.2:9000"}
	}`)

	pub, err := LoadPublic(path)
	if err != nil {
		t.Fatalf("LoadPublic: %v", err)
	}
	if len(pub) != 2 {
		t.Fatalf("expected 2 users, got %d", len(pub))
	}
	if pub["bob_b"].Host != "10.0.0.2:9000" {
		t.Fatalf("unexpected host: %q", pub["bob_b"].Host)
	}
	n, err := pub["alice"].Modulus()
	if err != nil || n.String() != "123456789" {
		t.Fatalf("Modulus: n=%v err=%v", n, err)
	}
}

func TestLoadPrivate(t *testing.T) {
	path := writeTemp(t, "priv.json", `{
		"port": 9001,
		"passcodes": {"alice": "hunter2"},
		"secret": {"alice": "42"}
	}`)

	priv, err := LoadPrivate(path)
	if err != nil {
		t.Fatalf("LoadPrivate: %v", err)
	}
	if priv.Port != 9001 {
		t.Fatalf("unexpected port: %d", priv.Port)
	}
	d, err := priv.PrivateExponent("alice")
	if err != nil || d.String() != "42" {
		t.Fatalf("PrivateExponent: d=%v err=%v", d, err)
	}
	if _, err := priv.PrivateExponent("ghost"); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestLocalUsersAndRemoteHosts(t *testing.T) {
	priv := &Private{Secret: map[string]string{"alice": "1"}}
	if users := priv.LocalUsers(); len(users) != 1 || users[0] != "alice" {
		t.Fatalf("unexpected local users: %v", users)
	}

	pub := Public{
		"alice": {Key: "1"},
		"bob_b": {Key: "2", Host: "10.0.0.2:9000"},
		"carol": {Key: "3", Host: "10.0.0.3:9000"},
	}
	hosts := RemoteHosts(pub, priv)
	if len(hosts) != 2 {
		t.Fatalf("expected 2 remote hosts, got %v", hosts)
	}
}

func TestLoadPublicMissingFile(t *testing.T) {
	if _, err := LoadPublic(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
