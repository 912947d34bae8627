package check

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathanspw/mirrors/internal/config"
)

// Candidate is one metadata URL that must be reachable for a mirror to be
// considered available, tagged with the version and repo path it covers.
type Candidate struct {
	URL      string
	Version  string
	RepoPath string
}

// BaseURL returns the mirror address for the first protocol, in the service
// config's declared preference order, that the mirror serves. ok is false
// when the mirror serves none of the required protocols.
func BaseURL(cfg *config.ServiceConfig, m *config.Mirror) (string, bool) {
	for _, protocol := range cfg.RequiredProtocols {
		if addr, ok := m.URLs[protocol]; ok {
			return addr, true
		}
	}
	return "", false
}

// Enumerate produces the set of metadata URLs that must all be reachable
// for the mirror to be considered available. It applies every exclusion
// rule: duplicated versions, beta versions on cloud mirrors, vault repos,
// repo-level version and arch lists, the per-version arch allow-list and
// the static per-mirror overrides. Candidates are deduplicated by URL.
//
// The function performs no I/O; an error means the mirror's base URL or a
// derived candidate could not be parsed, which indicates a broken config
// rather than an unavailable mirror.
func Enumerate(cfg *config.ServiceConfig, m *config.Mirror) ([]Candidate, error) {
	base, ok := BaseURL(cfg, m)
	if !ok {
		return nil, nil
	}
	override, hasOverride := archRepoOverrides[m.Name]

	seen := make(map[string]struct{})
	var candidates []Candidate

	for _, version := range cfg.Versions {
		// Cloud mirrors (Azure/AWS) don't carry beta versions.
		if m.CloudType != "" && strings.Contains(version, "beta") {
			continue
		}
		if _, dup := cfg.DuplicatedVersions[version]; dup {
			continue
		}
		for _, repo := range cfg.Repos {
			if hasOverride && !override.allowsRepo(repo.Name) {
				continue
			}
			if repo.Vault {
				continue
			}
			if len(repo.Versions) > 0 && !containsString(repo.Versions, version) {
				continue
			}
			arches := repo.Arches
			if len(arches) == 0 {
				arches = cfg.Arches
			}
			for _, arch := range arches {
				if hasOverride && !override.allowsArch(arch) {
					continue
				}
				if !archPermitted(cfg.VersionsArches, version, arch) {
					continue
				}
				repoPath := strings.ReplaceAll(repo.Path, "$basearch", arch)
				candidateURL, err := joinURL(base, version, repoPath, "repodata/repomd.xml")
				if err != nil {
					return nil, fmt.Errorf("building check URL for mirror %q version %q repo %q: %w",
						m.Name, version, repo.Name, err)
				}
				if _, dup := seen[candidateURL]; dup {
					continue
				}
				seen[candidateURL] = struct{}{}
				candidates = append(candidates, Candidate{
					URL:      candidateURL,
					Version:  version,
					RepoPath: repoPath,
				})
			}
		}
	}
	return candidates, nil
}

// archPermitted reports whether arch may be checked for version. A version
// absent from the allow-list permits every arch.
func archPermitted(versionsArches config.VersionArches, version, arch string) bool {
	arches, ok := versionsArches[version]
	if !ok {
		return true
	}
	return containsString(arches, arch)
}

// joinURL resolves each segment against the accumulated URL the way
// repeated urljoin calls would: the base is treated as a directory and each
// segment as a relative reference, so segment boundaries survive repo paths
// that contain subdirectories.
func joinURL(base string, segments ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	for _, seg := range segments {
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		ref, err := url.Parse(seg)
		if err != nil {
			return "", err
		}
		u = u.ResolveReference(ref)
	}
	return u.String(), nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
