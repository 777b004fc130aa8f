// Package modules holds the static registry of optional feature modules and
// the pruner that removes unselected ones from the source tree.
package modules

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ID names a module; directory names under packages/ follow it by convention.
type ID string

const (
	Payments       ID = "payments"
	Video          ID = "video"
	SMS            ID = "sms"
	TextToSpeech   ID = "tts"
	BackgroundJobs ID = "background-jobs"
	AuthAdapter    ID = "auth-adapter"
)

// Platform is an operator-selected deployment target. Web and mobile are not
// mutually exclusive.
type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformMobile Platform = "mobile"
)

// Descriptor is the static, read-only description of one module.
type Descriptor struct {
	ID              ID     `yaml:"id"`
	DisplayName     string `yaml:"displayName"`
	SourcePath      string `yaml:"sourcePath"`
	EnvBlockMarker  string `yaml:"envBlockMarker"`
	DefaultSelected bool   `yaml:"defaultSelected"`
	// PlatformConstraint restricts where the module is offered; empty means
	// any platform.
	PlatformConstraint Platform `yaml:"platformConstraint,omitempty"`
}

var registry = []Descriptor{
	{
		ID:              Payments,
		DisplayName:     "Payments (Stripe)",
		SourcePath:      "packages/payments",
		EnvBlockMarker:  "payments",
		DefaultSelected: true,
	},
	{
		ID:              Video,
		DisplayName:     "Video (Mux)",
		SourcePath:      "packages/video",
		EnvBlockMarker:  "video",
		DefaultSelected: false,
	},
	{
		ID:              SMS,
		DisplayName:     "SMS (Twilio)",
		SourcePath:      "packages/sms",
		EnvBlockMarker:  "sms",
		DefaultSelected: false,
	},
	{
		ID:              TextToSpeech,
		DisplayName:     "Text-to-speech (ElevenLabs)",
		SourcePath:      "packages/tts",
		EnvBlockMarker:  "tts",
		DefaultSelected: false,
	},
	{
		ID:                 BackgroundJobs,
		DisplayName:        "Background jobs (server only)",
		SourcePath:         "packages/jobs",
		EnvBlockMarker:     "background-jobs",
		DefaultSelected:    true,
		PlatformConstraint: PlatformWeb,
	},
	{
		ID:              AuthAdapter,
		DisplayName:     "Managed auth adapter",
		SourcePath:      "packages/auth-adapter",
		EnvBlockMarker:  "auth-adapter",
		DefaultSelected: true,
	},
}

// Registry returns a copy of the module registry so callers cannot mutate
// the canonical table.
func Registry() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// ByID looks up a descriptor.
func ByID(id ID) (Descriptor, bool) {
	for _, d := range registry {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// overlay is the optional forge.yaml shape; only the modules section is ours.
type overlay struct {
	Modules []struct {
		ID              ID     `yaml:"id"`
		SourcePath      string `yaml:"sourcePath"`
		DefaultSelected *bool  `yaml:"defaultSelected"`
	} `yaml:"modules"`
}

// RegistryWithOverlay applies per-project overrides from forge.yaml when the
// file exists. Unknown module ids in the overlay are ignored; the registry
// itself stays closed.
func RegistryWithOverlay(root string) []Descriptor {
	out := Registry()

	raw, err := os.ReadFile(filepath.Join(root, "forge.yaml"))
	if err != nil {
		return out
	}
	var o overlay
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return out
	}

	for _, mod := range o.Modules {
		for i := range out {
			if out[i].ID != mod.ID {
				continue
			}
			if mod.SourcePath != "" {
				out[i].SourcePath = mod.SourcePath
			}
			if mod.DefaultSelected != nil {
				out[i].DefaultSelected = *mod.DefaultSelected
			}
		}
	}
	return out
}
