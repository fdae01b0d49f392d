// internal/assistant/render.go
package assistant

import (
	"fmt"
	"sort"
	"strings"

	"policy-assistant/internal/models"
)

// RenderPolicy turns a policy record into the prose block fed to the
// generation engine. Sections appear in a fixed order and are omitted when
// the record has no data for them. Map-backed sections are rendered with
// sorted keys so output is deterministic.
func RenderPolicy(rec *models.PolicyRecord) string {
	if rec == nil {
		return ""
	}

	var b strings.Builder

	if len(rec.PolicyDetails) > 0 {
		b.WriteString("POLICY DETAILS:\n")
		writeDetailLines(&b, rec.PolicyDetails)
	}

	if len(rec.ProposerDetails) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("PROPOSER DETAILS:\n")
		writeDetailLines(&b, rec.ProposerDetails)
	}

	if len(rec.InsuredDetails) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("INSURED DETAILS:\n")
		writeDetailLines(&b, rec.InsuredDetails)
	}

	if len(rec.Coverages) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("COVERAGES:\n")
		for _, cov := range rec.Coverages {
			b.WriteString(fmt.Sprintf("\n- %s\n", defaultString(cov.CoverName, "Unknown")))
			b.WriteString(fmt.Sprintf("  Benefits: %s\n", defaultString(cov.Benefits, "Not specified")))
			b.WriteString(fmt.Sprintf("  Sum Insured: %s\n", defaultString(cov.SumInsured, "Not specified")))
			b.WriteString(fmt.Sprintf("  Deductibles: %s\n", defaultString(cov.Deductibles, "Not specified")))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeDetailLines(b *strings.Builder, section map[string]interface{}) {
	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(fmt.Sprintf("- %s: %v\n", titleCase(k), section[k]))
	}
}

// titleCase converts a snake_case field name to Title Case for display.
func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
