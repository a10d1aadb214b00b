package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/afiya/afiyacare/internal/diagnosis"
	"github.com/afiya/afiyacare/internal/language"
)

const (
	// Divider separates sections of a rendered diagnosis
	Divider = "━━━━━━━━━━━━━━━━━"
	// Ellipsis marks truncated text
	Ellipsis = "..."

	// MaxConditions is the number of conditions shown
	MaxConditions = 3
	// MaxTreatments is the number of treatments shown for the top condition
	MaxTreatments = 3
	// MaxDescriptionLength bounds each condition description
	MaxDescriptionLength = 150
	// MaxAnalysisLength bounds the AI analysis paragraph
	MaxAnalysisLength = 200

	closingLine = "💬 Send another message to describe different symptoms!"
)

// Render formats a diagnosis result as a single chat message. Sections
// without data are skipped; the closing line is always present. A nil
// result yields just the closing line.
func Render(result *diagnosis.Result) string {
	var b strings.Builder
	if result == nil {
		result = &diagnosis.Result{}
	}

	if len(result.RedFlags) > 0 {
		b.WriteString("🚨 *URGENT ALERT / SANARWA MAI MUHIMMANCI*\n\n")
		for _, flag := range result.RedFlags {
			b.WriteString(flag)
			b.WriteString("\n\n")
		}
		writeDivider(&b)
	}

	if len(result.Conditions) > 0 {
		b.WriteString("🔍 *Possible Conditions:*\n\n")
		for i, c := range head(result.Conditions, MaxConditions) {
			writeCondition(&b, i, c)
		}
		writeDivider(&b)
	}

	if result.NatlasAnalysis != nil && *result.NatlasAnalysis != "" {
		fmt.Fprintf(&b, "💡 *AI Analysis:*\n%s\n\n", Truncate(*result.NatlasAnalysis, MaxAnalysisLength))
		writeDivider(&b)
	}

	if len(result.Recommendations) > 0 {
		b.WriteString("📋 *Recommendations:*\n")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(&b, "  • %s\n", rec)
		}
		b.WriteString("\n")
		writeDivider(&b)
	}

	if result.Disclaimer != nil && *result.Disclaimer != "" {
		fmt.Fprintf(&b, "⚕️ %s\n\n", *result.Disclaimer)
	}

	if result.DetectedLanguage != nil && *result.DetectedLanguage != "" {
		fmt.Fprintf(&b, "🌍 Language: %s\n", language.DisplayName(*result.DetectedLanguage))
	}

	if result.ProcessingTimeMs != nil {
		fmt.Fprintf(&b, "⚡ Response time: %dms\n", *result.ProcessingTimeMs)
	}

	b.WriteString("\n")
	b.WriteString(closingLine)

	return b.String()
}

func writeCondition(b *strings.Builder, index int, c diagnosis.Condition) {
	fmt.Fprintf(b, "*%d. %s*\n", index+1, c.Title)
	fmt.Fprintf(b, "📊 Confidence: %d%%\n", ConfidencePercent(c.Confidence))
	fmt.Fprintf(b, "📝 %s\n", Truncate(c.Description, MaxDescriptionLength))

	if index == 0 && len(c.Treatments) > 0 {
		b.WriteString("\n💊 *Suggested Care:*\n")
		for _, t := range head(c.Treatments, MaxTreatments) {
			fmt.Fprintf(b, "  • %s\n", t)
		}
	}
	b.WriteString("\n")
}

func writeDivider(b *strings.Builder) {
	b.WriteString(Divider)
	b.WriteString("\n\n")
}

// ConfidencePercent converts a confidence to a rounded percentage, clamped to [0,100]
func ConfidencePercent(confidence float64) int {
	return int(math.Round(math.Max(0, math.Min(1, confidence)) * 100))
}

// Truncate keeps the first max characters of s and appends Ellipsis when
// anything was cut. Length is counted in characters, not bytes, and the
// cut ignores word boundaries.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + Ellipsis
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
