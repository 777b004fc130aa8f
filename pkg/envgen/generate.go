// pkg/envgen/generate.go

package envgen

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/forgeworks/forge/pkg/datastore"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/modules"
	cerr "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Named substitution keys. Placeholders in templates look like
// {{FORGE_DATABASE_URL}} and are replaced by key, never by position.
const (
	KeyConnectionString = "FORGE_DATABASE_URL"
	KeyEndpointURL      = "FORGE_API_URL"
	KeyReadCredential   = "FORGE_ANON_KEY"
	KeyWriteCredential  = "FORGE_SERVICE_ROLE_KEY"
	KeyDashboardURL     = "FORGE_DASHBOARD_URL"
	KeyAuthStrategy     = "FORGE_AUTH_STRATEGY"
)

// Substitutions maps placeholder keys to the provisioned values.
func Substitutions(ds *datastore.Config, auth datastore.Strategy) map[string]string {
	return map[string]string{
		KeyConnectionString: ds.ConnectionString,
		KeyEndpointURL:      ds.EndpointURL,
		KeyReadCredential:   ds.ReadCredential,
		KeyWriteCredential:  ds.WriteCredential,
		KeyDashboardURL:     ds.DashboardURL,
		KeyAuthStrategy:     string(auth),
	}
}

// Generate renders the final env text: unselected module spans removed,
// the datastore span replaced by the strategy-specific block, remaining
// sentinels dropped and placeholders substituted by key. It is a pure
// function of its arguments, so two calls with the same input are
// byte-identical.
func Generate(tmpl string, reg []modules.Descriptor, selected map[modules.ID]bool, ds *datastore.Config, auth datastore.Strategy) (string, error) {
	out := tmpl
	sub := Substitutions(ds, auth)

	for _, d := range reg {
		if selected[d.ID] {
			continue
		}
		out = removeSpan(out, moduleMarker(d))
	}

	out = replaceSpan(out, datastoreMarker, datastoreBlock(sub, auth == datastore.StrategyEmbedded))

	// Kept modules lose their sentinel lines but keep their contents.
	out = dropSentinelLines(out)

	for key, value := range sub {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}

	if strings.Contains(out, "# >>>") || strings.Contains(out, "# <<<") {
		return "", cerr.New("sentinel markers survived generation")
	}

	return collapseBlankRuns(out), nil
}

// removeSpan deletes a full sentinel-delimited region, non-greedy so paired
// markers never swallow a neighboring block.
func removeSpan(text, marker string) string {
	re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(sentinelStart(marker)) + `\n.*?` + regexp.QuoteMeta(sentinelEnd(marker)) + `\n?`)
	return re.ReplaceAllString(text, "")
}

// replaceSpan swaps a sentinel-delimited region's contents.
func replaceSpan(text, marker, replacement string) string {
	re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(sentinelStart(marker)) + `\n.*?` + regexp.QuoteMeta(sentinelEnd(marker)) + `\n?`)
	return re.ReplaceAllString(text, replacement)
}

var sentinelLine = regexp.MustCompile(`(?m)^# (?:>>>|<<<) forge:.*\n?`)

func dropSentinelLines(text string) string {
	return sentinelLine.ReplaceAllString(text, "")
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

func collapseBlankRuns(text string) string {
	return blankRuns.ReplaceAllString(text, "\n\n")
}

// WriteArtifact generates and writes .env.local under root. Keys the
// operator already set in an existing artifact win over freshly generated
// values, so re-running setup never clobbers manual edits.
func WriteArtifact(rc *forge_io.RuntimeContext, root string, reg []modules.Descriptor, selected map[modules.ID]bool, ds *datastore.Config, auth datastore.Strategy) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	text, err := Generate(LoadTemplate(root, reg), reg, selected, ds, auth)
	if err != nil {
		return "", err
	}

	path := filepath.Join(root, ArtifactName)

	if existing, readErr := os.ReadFile(path); readErr == nil {
		kept, parseErr := godotenv.Unmarshal(string(existing))
		if parseErr == nil {
			text = preserveOperatorValues(text, kept)
			logger.Debug("Merged values from existing artifact", zap.Int("keys", len(kept)))
		} else {
			logger.Warn("Existing artifact unparseable, overwriting", zap.Error(parseErr))
		}
	}

	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return "", cerr.Wrapf(err, "write %s", ArtifactName)
	}

	logger.Info("Environment artifact written", zap.String("path", path))
	return path, nil
}

var keyValueLine = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)=(.*)$`)

// preserveOperatorValues rewrites generated lines whose keys the operator
// already filled in, and only when the generated value is empty or a known
// placeholder.
func preserveOperatorValues(text string, kept map[string]string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		m := keyValueLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, generated := m[1], m[2]
		if prior, ok := kept[key]; ok && prior != "" && (generated == "" || generated == "CHANGE_ME") {
			lines[i] = key + "=" + prior
		}
	}
	return strings.Join(lines, "\n")
}
