package check

// alwaysAvailable lists mirrors that are reported available without
// probing: the primary repo host must stay in the mirror list even while
// it is being hammered.
var alwaysAvailable = map[string]struct{}{
	"repo.almalinux.org": {},
}

// archRepoOverride narrows the checked arch/repo matrix for a single
// mirror. Only the listed arches and repos are probed; everything else the
// generic enumeration would produce is skipped.
type archRepoOverride struct {
	arches map[string]struct{}
	repos  map[string]struct{}
}

func (o archRepoOverride) allowsArch(arch string) bool {
	_, ok := o.arches[arch]
	return ok
}

func (o archRepoOverride) allowsRepo(repo string) bool {
	_, ok := o.repos[repo]
	return ok
}

func newArchRepoOverride(arches, repos []string) archRepoOverride {
	o := archRepoOverride{
		arches: make(map[string]struct{}, len(arches)),
		repos:  make(map[string]struct{}, len(repos)),
	}
	for _, a := range arches {
		o.arches[a] = struct{}{}
	}
	for _, r := range repos {
		o.repos[r] = struct{}{}
	}
	return o
}

// TODO: drop once the azure mirrors carry the full arch/repo matrix
// (tracked upstream as mirrors issue 572).
var archRepoOverrides = buildArchRepoOverrides()

func buildArchRepoOverrides() map[string]archRepoOverride {
	azureArches := []string{"x86_64", "aarch64"}
	azureRepos := []string{
		"AppStream",
		"BaseOS",
		"HighAvailability",
		"NFV",
		"PowerTools",
		"RT",
		"ResilientStorage",
		"devel",
		"extras",
		"plus",
	}

	overrides := make(map[string]archRepoOverride, 4)
	for _, name := range []string{
		"eastus.azure.repo.almalinux.org",
		"germanywestcentral.azure.repo.almalinux.org",
		"southeastasia.azure.repo.almalinux.org",
		"westus2.azure.repo.almalinux.org",
	} {
		overrides[name] = newArchRepoOverride(azureArches, azureRepos)
	}
	return overrides
}
