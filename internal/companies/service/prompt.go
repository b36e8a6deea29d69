package service

import (
	"strings"

	"github.com/placement-track/placement-track-backend/internal/experiences/domain"
)

// BuildSummaryPrompt renders the structured summary request for a company's
// experience set. The section list and per-experience block are load-bearing:
// the generated text is cached verbatim and the frontend renders the numbered
// sections as-is.
func BuildSummaryPrompt(experiences []domain.Experience) string {
	var b strings.Builder
	b.WriteString("Based on the following placement experiences, provide a comprehensive summary of the interview process, rounds, and tips for candidates. Format your response with clear sections:\n\n")
	b.WriteString("1. Overall Interview Process\n")
	b.WriteString("2. Common Interview Rounds\n")
	b.WriteString("3. Key Preparation Tips\n")
	b.WriteString("4. Difficulty Level\n")
	b.WriteString("5. Salary Range\n")
	b.WriteString("6. Final Recommendations\n")

	for _, exp := range experiences {
		b.WriteString("\n")
		writeExperienceBlock(&b, exp)
	}
	return b.String()
}

func writeExperienceBlock(b *strings.Builder, exp domain.Experience) {
	b.WriteString("Company: " + exp.CompanyName + "\n")
	b.WriteString("Position: " + exp.Position + "\n")
	b.WriteString("Experience: " + exp.Description + "\n")
	b.WriteString("Rounds: " + orDefault(strings.Join(exp.Rounds, ", "), "Not specified") + "\n")
	b.WriteString("Tips: " + orDefault(exp.Tips, "Not provided") + "\n")
	b.WriteString("Difficulty: " + orDefault(exp.Difficulty, "Not specified") + "\n")
	b.WriteString("Salary: " + orDefault(exp.Salary, "Not specified") + "\n")
	b.WriteString("Offer Status: " + orDefault(exp.OfferStatus, "Not specified") + "\n")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
