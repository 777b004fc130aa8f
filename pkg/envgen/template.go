// Package envgen produces the template's .env.local from a sentinel-marked
// template: module blocks for unselected modules are stripped whole, and
// datastore connection values are substituted by key, so ordering in the
// template never matters.
package envgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgeworks/forge/pkg/modules"
)

// TemplateName is the marked-up source file looked up under the project root.
const TemplateName = ".env.template"

// ArtifactName is the generated file consumed by the application at startup.
const ArtifactName = ".env.local"

func sentinelStart(marker string) string { return "# >>> forge:" + marker }
func sentinelEnd(marker string) string   { return "# <<< forge:" + marker }

const datastoreMarker = "datastore"

func moduleMarker(d modules.Descriptor) string { return "module:" + d.EnvBlockMarker }

// moduleKeys are the per-module template lines used when synthesizing.
var moduleKeys = map[modules.ID][]string{
	modules.Payments:       {"STRIPE_SECRET_KEY=", "STRIPE_WEBHOOK_SECRET="},
	modules.Video:          {"MUX_TOKEN_ID=", "MUX_TOKEN_SECRET="},
	modules.SMS:            {"TWILIO_ACCOUNT_SID=", "TWILIO_AUTH_TOKEN="},
	modules.TextToSpeech:   {"ELEVENLABS_API_KEY="},
	modules.BackgroundJobs: {"JOBS_CONCURRENCY=4"},
	modules.AuthAdapter:    {"AUTH_REDIRECT_URL=http://localhost:3000/auth/callback"},
}

// LoadTemplate reads the project's env template, synthesizing a minimal one
// from the registry when the file is absent so generation never hard-fails.
func LoadTemplate(root string, reg []modules.Descriptor) string {
	raw, err := os.ReadFile(filepath.Join(root, TemplateName))
	if err == nil {
		return string(raw)
	}
	return SynthesizeTemplate(reg)
}

// SynthesizeTemplate builds a template equivalent to the shipped one from
// the same module registry.
func SynthesizeTemplate(reg []modules.Descriptor) string {
	var sb strings.Builder

	sb.WriteString("# Application environment. Generated by forge setup.\n")
	sb.WriteString("APP_ENV=development\n\n")

	sb.WriteString(sentinelStart(datastoreMarker) + "\n")
	sb.WriteString(sentinelEnd(datastoreMarker) + "\n\n")

	for _, d := range reg {
		sb.WriteString(sentinelStart(moduleMarker(d)) + "\n")
		for _, line := range moduleKeys[d.ID] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString(sentinelEnd(moduleMarker(d)) + "\n\n")
	}

	return sb.String()
}

// datastoreBlock renders the key=value lines for the active strategy. Only
// the keys that strategy needs appear in the output.
func datastoreBlock(sub map[string]string, embedded bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DATABASE_URL=%s\n", sub[KeyConnectionString])
	if !embedded {
		fmt.Fprintf(&sb, "NEXT_PUBLIC_API_URL=%s\n", sub[KeyEndpointURL])
		fmt.Fprintf(&sb, "NEXT_PUBLIC_ANON_KEY=%s\n", sub[KeyReadCredential])
		fmt.Fprintf(&sb, "SERVICE_ROLE_KEY=%s\n", sub[KeyWriteCredential])
	}
	fmt.Fprintf(&sb, "AUTH_STRATEGY=%s\n", sub[KeyAuthStrategy])
	return sb.String()
}
