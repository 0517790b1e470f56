package session

import "github.com/sandevgo/snipbot/internal/core"

// Detector pairs a resolver with the notice texts shown while it is armed.
type Detector struct {
	Name        string
	Resolver    core.ContentResolver
	PendingText string
	ReadyText   string
}

func disableHint(name string) string {
	return "To disable this, type `removeconfig " + name + "`"
}

func NewDetector(resolver core.ContentResolver, pending, ready string) Detector {
	return Detector{
		Name:        resolver.Name(),
		Resolver:    resolver,
		PendingText: pending,
		ReadyText:   ready + "\n" + disableHint(resolver.Name()),
	}
}

// DefaultDetectors builds the standard detector set, skipping nil resolvers
// and the ones enabled reports as switched off.
func DefaultDetectors(enabled func(name string) bool, codeBlock, file, github core.ContentResolver) []Detector {
	candidates := []struct {
		resolver core.ContentResolver
		pending  string
		ready    string
	}{
		{github, "Fetching github link...", "Working github link found!"},
		{file, "Resolving file integrity...", "Readable file found!"},
		{codeBlock, "Resolving code block integrity...", "Valid codeblock found!"},
	}

	detectors := make([]Detector, 0, len(candidates))
	for _, c := range candidates {
		if c.resolver == nil {
			continue
		}
		if enabled != nil && !enabled(c.resolver.Name()) {
			continue
		}
		detectors = append(detectors, NewDetector(c.resolver, c.pending, c.ready))
	}
	return detectors
}
