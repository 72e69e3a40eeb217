package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bebsworthy/devbench/internal/testutil"
)

func TestLoader_Load(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, ".devbench.json")
	if err := testutil.NewConfigBuilder().WithReloads(7).WriteToFile(configPath); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	loader := &Loader{
		SearchPaths: []string{tempDir},
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Reloads != 7 {
		t.Errorf("Expected 7 reloads, got %d", cfg.Reloads)
	}
	if len(cfg.Shells) != 2 {
		t.Errorf("Expected 2 shells, got %d", len(cfg.Shells))
	}
	if loader.Source() != configPath {
		t.Errorf("Expected source %s, got %s", configPath, loader.Source())
	}
}

func TestLoader_LoadTOML(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	tempDir := t.TempDir()

	data := `version = "1.0"
shells = ["ghc925"]
flakes = ["owner/flake"]
reloads = 2
precision = 3
cleanup = ""
bootstrap = "nix develop github:${flake}#${shell} --command true"
`
	if err := os.WriteFile(filepath.Join(tempDir, ".devbench.toml"), []byte(data), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	loader := &Loader{SearchPaths: []string{tempDir}}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Precision != 3 || cfg.Reloads != 2 {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Cleanup != "" {
		t.Errorf("Expected empty cleanup, got %q", cfg.Cleanup)
	}
}

func TestLoader_JSONTakesPrecedenceOverTOML(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	tempDir := t.TempDir()

	if err := testutil.NewConfigBuilder().WithReloads(1).WriteToFile(filepath.Join(tempDir, ".devbench.json")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, ".devbench.toml"), []byte("not toml ["), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := (&Loader{SearchPaths: []string{tempDir}}).Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Reloads != 1 {
		t.Errorf("Expected the JSON file to be used, got reloads=%d", cfg.Reloads)
	}
}

func TestLoader_SearchOrder(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	first := t.TempDir()
	second := t.TempDir()

	if err := testutil.NewConfigBuilder().WithReloads(9).WriteToFile(filepath.Join(second, ".devbench.json")); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{SearchPaths: []string{first, second}}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Reloads != 9 {
		t.Errorf("Expected config from second path, got reloads=%d", cfg.Reloads)
	}

	if err := testutil.NewConfigBuilder().WithReloads(4).WriteToFile(filepath.Join(first, ".devbench.json")); err != nil {
		t.Fatal(err)
	}
	cfg, err = loader.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Reloads != 4 {
		t.Errorf("Expected config from first path, got reloads=%d", cfg.Reloads)
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	tempDir := t.TempDir()

	envConfigPath := filepath.Join(tempDir, "custom.json")
	if err := testutil.NewConfigBuilder().WithFlakes("env/flake").WriteToFile(envConfigPath); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigEnvVar, envConfigPath)

	// The env var wins over the search paths
	searchDir := t.TempDir()
	if err := testutil.NewConfigBuilder().WriteToFile(filepath.Join(searchDir, ".devbench.json")); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{SearchPaths: []string{searchDir}}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Failed to load config from env: %v", err)
	}

	if len(cfg.Flakes) != 1 || cfg.Flakes[0] != "env/flake" {
		t.Errorf("Expected flake from env config, got %v", cfg.Flakes)
	}
}

func TestLoader_LoadFromEnvMissing(t *testing.T) {
	t.Setenv(ConfigEnvVar, filepath.Join(t.TempDir(), "missing.json"))

	_, err := (&Loader{}).Load()
	if err == nil {
		t.Fatal("Expected error for missing env config")
	}
	if !strings.Contains(err.Error(), ConfigEnvVar) {
		t.Errorf("Expected error to name %s, got: %v", ConfigEnvVar, err)
	}
}

func TestLoader_LoadErrors(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		errorMsg string
	}{
		{
			name:     "invalid JSON",
			file:     "bad.json",
			content:  "{invalid json}",
			errorMsg: "failed to parse config",
		},
		{
			name:     "invalid TOML",
			file:     "bad.toml",
			content:  "shells = [",
			errorMsg: "failed to parse config",
		},
		{
			name:     "empty version",
			file:     "noversion.json",
			content:  `{"version": "", "shells": ["a"], "flakes": ["f"], "reloads": 1, "bootstrap": "true"}`,
			errorMsg: "version is required",
		},
		{
			name:     "duplicate shell",
			file:     "dup.json",
			content:  `{"version": "1.0", "shells": ["a", "a"], "flakes": ["f"], "reloads": 1, "bootstrap": "true"}`,
			errorMsg: `shells[1]: duplicate shell "a"`,
		},
		{
			name:     "zero reloads",
			file:     "zero.toml",
			content:  "version = \"1.0\"\nshells = [\"a\"]\nflakes = [\"f\"]\nreloads = 0\nbootstrap = \"true\"\n",
			errorMsg: "reloads must be at least 1",
		},
	}

	loader := &Loader{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			_, err := loader.LoadFromPath(path)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Expected error containing %q, got: %v", tt.errorMsg, err)
			}
		})
	}

	if _, err := loader.LoadFromPath(filepath.Join(tempDir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoader_PartialConfigKeepsDefaults(t *testing.T) {
	tempDir := t.TempDir()
	defaults := DefaultConfig()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "partial.json",
			content: `{"version": "1.0", "shells": ["a"], "flakes": ["x/y"], "reloads": 10, "bootstrap": "true"}`,
		},
		{
			name:    "toml",
			file:    "partial.toml",
			content: "version = \"1.0\"\nshells = [\"a\"]\nflakes = [\"x/y\"]\nreloads = 10\nbootstrap = \"true\"\n",
		},
	}

	loader := &Loader{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			cfg, err := loader.LoadFromPath(path)
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if cfg.Precision != defaults.Precision {
				t.Errorf("Expected precision %d, got %d", defaults.Precision, cfg.Precision)
			}
			if cfg.Cleanup != defaults.Cleanup {
				t.Errorf("Expected cleanup %q, got %q", defaults.Cleanup, cfg.Cleanup)
			}
			if len(cfg.Shells) != 1 || cfg.Shells[0] != "a" {
				t.Errorf("Expected shells from the file, got %v", cfg.Shells)
			}
			if cfg.Bootstrap != "true" {
				t.Errorf("Expected bootstrap from the file, got %q", cfg.Bootstrap)
			}
		})
	}
}

func TestLoader_OmittedListsUseDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flakes-only.json")
	if err := os.WriteFile(path, []byte(`{"flakes": ["my/fork"]}`), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	cfg, err := (&Loader{}).LoadFromPath(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Flakes) != 1 || cfg.Flakes[0] != "my/fork" {
		t.Errorf("Expected flakes from the file, got %v", cfg.Flakes)
	}
	if len(cfg.Shells) != len(DefaultConfig().Shells) {
		t.Errorf("Expected the default shells, got %v", cfg.Shells)
	}
	if cfg.Reloads != 10 {
		t.Errorf("Expected 10 reloads, got %d", cfg.Reloads)
	}
}

func TestLoader_NoConfigFound(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")

	loader := &Loader{SearchPaths: []string{t.TempDir()}}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Expected defaults, got error: %v", err)
	}

	if loader.Source() != SourceDefaults {
		t.Errorf("Expected source %q, got %q", SourceDefaults, loader.Source())
	}
	if len(cfg.Shells) != 9 {
		t.Errorf("Expected the 9 default shells, got %d", len(cfg.Shells))
	}
}

func TestSave(t *testing.T) {
	tempDir := t.TempDir()
	cfg := testutil.NewConfigBuilder().WithTimeout(1500).Build()

	for _, name := range []string{"out.json", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tempDir, name)
			if err := Save(path, cfg); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := (&Loader{}).LoadFromPath(path)
			if err != nil {
				t.Fatalf("Failed to load saved config: %v", err)
			}
			if loaded.Timeout != 1500 || loaded.Bootstrap != cfg.Bootstrap {
				t.Errorf("Saved config does not match: %+v", loaded)
			}
		})
	}
}

func TestGetDefaultSearchPaths(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "flake.nix"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	chdir(t, nested)

	paths := getDefaultSearchPaths()
	if len(paths) < 2 {
		t.Fatalf("Expected at least 2 search paths, got %v", paths)
	}

	// Compare resolved paths, the temp dir may sit behind a symlink
	resolve := func(p string) string {
		r, err := filepath.EvalSymlinks(p)
		if err != nil {
			return p
		}
		return r
	}
	if resolve(paths[0]) != resolve(nested) {
		t.Errorf("Expected working directory first, got %s", paths[0])
	}
	if resolve(paths[1]) != resolve(root) {
		t.Errorf("Expected project root second, got %s", paths[1])
	}
}

func TestIsProjectRoot(t *testing.T) {
	dir := t.TempDir()
	if isProjectRoot(dir) {
		t.Error("Empty directory is not a project root")
	}
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	if !isProjectRoot(dir) {
		t.Error("Directory with .git is a project root")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(old, dir)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
