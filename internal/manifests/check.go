package manifests

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls a version-consistency scan.
type Options struct {
	// Ignore lists directory names that are never descended into.
	Ignore []string

	// IncludeDev includes devDependencies (and their equivalents) in the
	// consistency check. Production dependencies are always included.
	IncludeDev bool
}

// RangeUse records one distinct version range and the manifests declaring it.
type RangeUse struct {
	Range     string   `json:"range"`
	Manifests []string `json:"manifests"`
}

// Divergence is a dependency required with more than one distinct range.
type Divergence struct {
	Ecosystem Ecosystem  `json:"ecosystem"`
	Name      string     `json:"name"`
	Ranges    []RangeUse `json:"ranges"`
}

// Report is the result of one version-consistency scan.
type Report struct {
	Requirements []Requirement `json:"requirements"`
	Divergences  []Divergence  `json:"divergences"`
}

// Consistent reports whether every dependency is required with a single range.
func (r *Report) Consistent() bool {
	return len(r.Divergences) == 0
}

var defaultIgnore = []string{"node_modules", "build", "dist", "vendor", "target", ".git"}

// CheckVersions walks the repository, reads every package manifest it finds,
// groups requirements by (ecosystem, name), and reports any dependency that is
// required with more than one distinct version range. When the repo root
// carries a pnpm-workspace.yaml, npm manifests outside the workspace globs
// (and the root manifest) are skipped.
func CheckVersions(repoRoot string, opts Options) (*Report, error) {
	ignore := opts.Ignore
	if ignore == nil {
		ignore = defaultIgnore
	}
	ignoreSet := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		ignoreSet[name] = true
	}

	workspaceGlobs, err := WorkspacePackages(repoRoot)
	if err != nil {
		return nil, err
	}

	var all []Requirement
	err = filepath.WalkDir(repoRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != repoRoot && ignoreSet[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		var reqs []Requirement
		var readErr error
		switch d.Name() {
		case "package.json":
			if !npmManifestInWorkspace(rel, workspaceGlobs) {
				return nil
			}
			reqs, readErr = ReadPackageJSON(path, rel)
		case "pyproject.toml":
			reqs, readErr = ReadPyProject(path, rel)
		case "Cargo.toml":
			reqs, readErr = ReadCargoToml(path, rel)
		default:
			return nil
		}
		if readErr != nil {
			return readErr
		}

		for _, req := range reqs {
			if req.Dev && !opts.IncludeDev {
				continue
			}
			all = append(all, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Ecosystem != all[j].Ecosystem {
			return all[i].Ecosystem < all[j].Ecosystem
		}
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].Manifest < all[j].Manifest
	})

	return &Report{
		Requirements: all,
		Divergences:  findDivergences(all),
	}, nil
}

// npmManifestInWorkspace reports whether an npm manifest at the slash-relative
// path rel belongs to the scan. Without workspace globs every manifest does;
// with them, only the root manifest and manifests whose directory matches a
// glob are included.
func npmManifestInWorkspace(rel string, globs []string) bool {
	if len(globs) == 0 {
		return true
	}
	if rel == "package.json" {
		return true
	}
	dir := path.Dir(rel)
	for _, glob := range globs {
		if ok, err := path.Match(glob, dir); err == nil && ok {
			return true
		}
	}
	return false
}

// findDivergences groups requirements by (ecosystem, name) and keeps the
// groups spanning more than one distinct range. Input must be sorted.
func findDivergences(reqs []Requirement) []Divergence {
	type depKey struct {
		ecosystem Ecosystem
		name      string
	}

	byDep := make(map[depKey]map[string][]string)
	for _, req := range reqs {
		key := depKey{req.Ecosystem, req.Name}
		if byDep[key] == nil {
			byDep[key] = make(map[string][]string)
		}
		byDep[key][req.Range] = append(byDep[key][req.Range], req.Manifest)
	}

	var divergences []Divergence
	for key, byRange := range byDep {
		if len(byRange) < 2 {
			continue
		}

		ranges := make([]RangeUse, 0, len(byRange))
		for rng, manifests := range byRange {
			sort.Strings(manifests)
			ranges = append(ranges, RangeUse{Range: rng, Manifests: manifests})
		}
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].Range < ranges[j].Range })

		divergences = append(divergences, Divergence{
			Ecosystem: key.ecosystem,
			Name:      key.name,
			Ranges:    ranges,
		})
	}

	sort.Slice(divergences, func(i, j int) bool {
		if divergences[i].Ecosystem != divergences[j].Ecosystem {
			return divergences[i].Ecosystem < divergences[j].Ecosystem
		}
		return divergences[i].Name < divergences[j].Name
	})
	return divergences
}

// Summarize renders a short human-readable account of a report, one line per
// divergent dependency.
func Summarize(report *Report) string {
	if report.Consistent() {
		return "all dependency ranges are consistent"
	}

	var b strings.Builder
	for _, d := range report.Divergences {
		b.WriteString(string(d.Ecosystem))
		b.WriteString("/")
		b.WriteString(d.Name)
		b.WriteString(": ")
		for i, use := range d.Ranges {
			if i > 0 {
				b.WriteString(" vs ")
			}
			b.WriteString(use.Range)
			b.WriteString(" (")
			b.WriteString(strings.Join(use.Manifests, ", "))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
