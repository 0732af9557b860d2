package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/provider"
	"github.com/kwhittle/fathom/toolserver"
)

func TestFolderListFlag(t *testing.T) {
	var folders folderList
	for _, v := range []string{"/srv/a", "/srv/b"} {
		if err := folders.Set(v); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if len(folders) != 2 || folders[0] != "/srv/a" || folders[1] != "/srv/b" {
		t.Errorf("Unexpected folders: %v", folders)
	}
	if folders.String() != "/srv/a, /srv/b" {
		t.Errorf("Unexpected String: %s", folders.String())
	}
}

func TestDefaultServers(t *testing.T) {
	reg := toolserver.NewRegistry()
	selected := defaultServers(reg)
	if len(selected) != 1 || selected[0].ID != "filesystem" {
		t.Errorf("Expected the filesystem fallback, got %+v", selected)
	}
}

func TestExtraServers(t *testing.T) {
	cfg := &config.Config{
		ToolServers: []config.ToolServer{
			{ID: "weather", Name: "Weather", Command: "npx", Args: []string{"-y", "some-weather-server"}},
		},
	}
	extra := extraServers(cfg)
	if len(extra) != 1 || extra[0].ID != "weather" {
		t.Fatalf("Unexpected descriptors: %+v", extra)
	}
	reg := toolserver.NewRegistry(extra...)
	if reg.Len() != 9 {
		t.Errorf("Expected 9 catalog entries, got %d", reg.Len())
	}
}

func TestResolveServersFlagIsStrictInEveryMode(t *testing.T) {
	reg := toolserver.NewRegistry()
	for _, interactive := range []bool{true, false} {
		if _, err := resolveServers("9,bogus", interactive, nil, reg); err == nil {
			t.Errorf("Interactive=%v: expected an error for invalid tokens", interactive)
		}
	}
	selected, err := resolveServers("1,time", true, nil, reg)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(selected) != 2 || selected[0].ID != "filesystem" || selected[1].ID != "time" {
		t.Errorf("Unexpected selection: %+v", selected)
	}
}

func TestResolveServersWithoutFlag(t *testing.T) {
	reg := toolserver.NewRegistry()
	selected, err := resolveServers("", false, nil, reg)
	if err != nil {
		t.Fatalf("Scripted default failed: %v", err)
	}
	if len(selected) != 1 || selected[0].ID != "filesystem" {
		t.Errorf("Expected the filesystem fallback, got %+v", selected)
	}
	selected, err = resolveServers("", true, bufio.NewReader(strings.NewReader("time\n")), reg)
	if err != nil {
		t.Fatalf("Wizard selection failed: %v", err)
	}
	if len(selected) != 1 || selected[0].ID != "time" {
		t.Errorf("Expected the time server, got %+v", selected)
	}
}

func TestChooseProvider(t *testing.T) {
	cases := []struct {
		input string
		want  provider.Kind
	}{
		{"1\n", provider.KindOllama},
		{"\n", provider.KindOllama},
		{"2\n", provider.KindClaude},
		{"x\n2\n", provider.KindClaude},
	}
	for _, c := range cases {
		got := chooseProvider(bufio.NewReader(strings.NewReader(c.input)))
		if got != c.want {
			t.Errorf("Input %q: expected %s, got %s", c.input, c.want, got)
		}
	}
}

func TestConfirmFollowUp(t *testing.T) {
	cases := map[string]bool{
		"\n":    true,
		"y\n":   true,
		"Yes\n": true,
		"n\n":   false,
		"no\n":  false,
	}
	for input, want := range cases {
		if got := confirmFollowUp(bufio.NewReader(strings.NewReader(input))); got != want {
			t.Errorf("Input %q: expected %v, got %v", input, want, got)
		}
	}
}
