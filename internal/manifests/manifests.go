package manifests

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	bstoml "github.com/BurntSushi/toml"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	surferrors "surfex/internal/errors"
)

// Ecosystem identifies which package-manager family a requirement belongs to.
type Ecosystem string

const (
	EcosystemNpm    Ecosystem = "npm"
	EcosystemPython Ecosystem = "python"
	EcosystemCargo  Ecosystem = "cargo"
)

// Requirement is one dependency declaration read from a manifest file.
type Requirement struct {
	Ecosystem Ecosystem `json:"ecosystem"`
	Name      string    `json:"name"`
	Range     string    `json:"range"`
	Manifest  string    `json:"manifest"`
	Dev       bool      `json:"dev"`
}

// packageJSON mirrors the parts of an npm manifest we read.
type packageJSON struct {
	Name            string            `json:"name"`
	DependenciesMap map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// pyProject mirrors PEP 621 project metadata.
type pyProject struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
		OptionalDeps map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
}

// cargoManifest mirrors the dependency tables of a Cargo.toml. Entries are
// either a bare version string or an inline table carrying a version key.
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Dependencies    map[string]interface{} `toml:"dependencies"`
	DevDependencies map[string]interface{} `toml:"dev-dependencies"`
}

// pnpmWorkspace mirrors pnpm-workspace.yaml.
type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

// ReadPackageJSON reads npm dependency requirements from a package.json file.
func ReadPackageJSON(path string, rel string) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, surferrors.New(surferrors.ManifestUnreadable, "failed to read "+rel, err)
	}

	var manifest packageJSON
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, surferrors.New(surferrors.ManifestUnreadable, "failed to parse "+rel, err)
	}

	var reqs []Requirement
	for name, rng := range manifest.DependenciesMap {
		reqs = append(reqs, Requirement{Ecosystem: EcosystemNpm, Name: name, Range: rng, Manifest: rel})
	}
	for name, rng := range manifest.DevDependencies {
		reqs = append(reqs, Requirement{Ecosystem: EcosystemNpm, Name: name, Range: rng, Manifest: rel, Dev: true})
	}
	sortRequirements(reqs)
	return reqs, nil
}

// ReadPyProject reads Python dependency requirements from a pyproject.toml
// file. PEP 508 requirement strings are split into name and constraint at the
// first comparison or extras marker.
func ReadPyProject(path string, rel string) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, surferrors.New(surferrors.ManifestUnreadable, "failed to read "+rel, err)
	}

	var manifest pyProject
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, surferrors.New(surferrors.ManifestUnreadable, "failed to parse "+rel, err)
	}

	var reqs []Requirement
	for _, spec := range manifest.Project.Dependencies {
		name, rng := splitPEP508(spec)
		reqs = append(reqs, Requirement{Ecosystem: EcosystemPython, Name: name, Range: rng, Manifest: rel})
	}
	for _, specs := range manifest.Project.OptionalDeps {
		for _, spec := range specs {
			name, rng := splitPEP508(spec)
			reqs = append(reqs, Requirement{Ecosystem: EcosystemPython, Name: name, Range: rng, Manifest: rel, Dev: true})
		}
	}
	sortRequirements(reqs)
	return reqs, nil
}

// ReadCargoToml reads Rust dependency requirements from a Cargo.toml file.
func ReadCargoToml(path string, rel string) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, surferrors.New(surferrors.ManifestUnreadable, "failed to read "+rel, err)
	}

	var manifest cargoManifest
	if err := bstoml.Unmarshal(data, &manifest); err != nil {
		return nil, surferrors.New(surferrors.ManifestUnreadable, "failed to parse "+rel, err)
	}

	var reqs []Requirement
	for name, raw := range manifest.Dependencies {
		reqs = append(reqs, Requirement{Ecosystem: EcosystemCargo, Name: name, Range: cargoRange(raw), Manifest: rel})
	}
	for name, raw := range manifest.DevDependencies {
		reqs = append(reqs, Requirement{Ecosystem: EcosystemCargo, Name: name, Range: cargoRange(raw), Manifest: rel, Dev: true})
	}
	sortRequirements(reqs)
	return reqs, nil
}

// cargoRange extracts the version constraint from a Cargo dependency entry,
// which is either "1.0" or { version = "1.0", features = [...] }.
func cargoRange(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]interface{}:
		if version, ok := v["version"].(string); ok {
			return version
		}
	}
	return ""
}

// splitPEP508 separates "requests>=2.0,<3" into ("requests", ">=2.0,<3").
// Extras markers ("requests[socks]") are folded into the name.
func splitPEP508(spec string) (name string, rng string) {
	for i := 0; i < len(spec); i++ {
		switch spec[i] {
		case '>', '<', '=', '~', '!', ' ', ';':
			return spec[:i], trimSpaces(spec[i:])
		}
	}
	return spec, ""
}

func trimSpaces(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

// WorkspacePackages reads the package globs from a pnpm-workspace.yaml if one
// exists at the repo root. A missing file means no workspace.
func WorkspacePackages(repoRoot string) ([]string, error) {
	path := filepath.Join(repoRoot, "pnpm-workspace.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, surferrors.New(surferrors.ManifestUnreadable, "failed to read pnpm-workspace.yaml", err)
	}

	var workspace pnpmWorkspace
	if err := yaml.Unmarshal(data, &workspace); err != nil {
		return nil, surferrors.New(surferrors.ManifestUnreadable, "failed to parse pnpm-workspace.yaml", err)
	}
	return workspace.Packages, nil
}

func sortRequirements(reqs []Requirement) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Name != reqs[j].Name {
			return reqs[i].Name < reqs[j].Name
		}
		return !reqs[i].Dev && reqs[j].Dev
	})
}
