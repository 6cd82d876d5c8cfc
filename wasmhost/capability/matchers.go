package capability

import (
	"strings"

	"github.com/gobwas/glob"
)

// compiledFS holds FilesystemRules pre-compiled once per component into
// glob.Glob matchers, per spec.md §4.6 "pre-compiled once per component
// into matcher funcs."
type compiledFS struct {
	read, write, delete, list []glob.Glob
}

// compiledFunctions holds FunctionRules pre-compiled the same way
// compiledFS does, so CanInvokeFunction pays glob-compile cost once per
// Register/Reload rather than once per call.
type compiledFunctions struct {
	invoke []glob.Glob
}

func compileFunctions(r FunctionRules) compiledFunctions {
	return compiledFunctions{invoke: compileGlobs(r.Invoke)}
}

func compileGlobs(patterns []string) []glob.Glob {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue // malformed pattern never matches; caller's manifest validation should catch this earlier
		}
		out = append(out, g)
	}
	return out
}

func compileFS(r FilesystemRules) compiledFS {
	return compiledFS{
		read:   compileGlobs(r.Read),
		write:  compileGlobs(r.Write),
		delete: compileGlobs(r.Delete),
		list:   compileGlobs(r.List),
	}
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// matchHost implements spec.md §4.6's hostname wildcard rule: "*.example.com"
// matches a subdomain with exactly one label in place of "*"
// ("api.example.com"), never the bare parent domain or a deeper subdomain
// ("a.b.example.com"). IP literals and non-wildcard patterns match by
// exact equality.
func matchHost(pattern, host string) bool {
	if pattern == host {
		return true
	}
	if !strings.HasPrefix(pattern, "*.") {
		return false
	}
	suffix := pattern[1:] // ".example.com"
	if !strings.HasSuffix(host, suffix) {
		return false
	}
	// host must have exactly one label before the suffix (exclude the
	// bare parent domain, e.g. pattern "*.example.com" vs host
	// "example.com", and deeper subdomains such as "a.b.example.com").
	label := host[:len(host)-len(suffix)]
	return label != "" && !strings.Contains(label, ".")
}

func matchOutbound(rules []NetworkRule, host string, port int) bool {
	for _, r := range rules {
		if r.Port != 0 && r.Port != port {
			continue
		}
		if matchHost(r.Host, host) {
			return true
		}
	}
	return false
}

func matchInbound(ports []int, port int) bool {
	for _, p := range ports {
		if p == port {
			return true
		}
	}
	return false
}

func matchNamespace(namespaces []string, ns string) bool {
	for _, n := range namespaces {
		if n == ns {
			return true
		}
	}
	return false
}
