package assistant

import (
	"fmt"
	"strings"

	expdomain "github.com/placement-track/placement-track-backend/internal/experiences/domain"
)

func buildPrompt(question string, snapshot Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following placement experiences, answer this question: %q\n", question)

	if len(snapshot.Companies) > 0 {
		b.WriteString("\nCompanies on the platform:\n")
		for _, c := range snapshot.Companies {
			fmt.Fprintf(&b, "- %s (%d experiences)\n", c.Name, c.ExperienceCount)
		}
	}

	if snapshot.Profile != nil {
		b.WriteString("\nAbout the person asking:\n")
		if snapshot.Profile.DisplayName != "" {
			fmt.Fprintf(&b, "Name: %s\n", snapshot.Profile.DisplayName)
		}
		if snapshot.Profile.Bio != "" {
			fmt.Fprintf(&b, "Bio: %s\n", snapshot.Profile.Bio)
		}
	}

	writeExperiences(&b, "Recent experiences", snapshot.RecentExperiences)
	writeExperiences(&b, "The asker's own experiences", snapshot.OwnExperiences)

	return b.String()
}

func writeExperiences(b *strings.Builder, heading string, experiences []expdomain.Experience) {
	if len(experiences) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, exp := range experiences {
		b.WriteString("\n")
		b.WriteString("Company: " + exp.CompanyName + "\n")
		b.WriteString("Position: " + exp.Position + "\n")
		b.WriteString("Experience: " + exp.Description + "\n")
		b.WriteString("Rounds: " + orDefault(strings.Join(exp.Rounds, ", "), "Not specified") + "\n")
		b.WriteString("Tips: " + orDefault(exp.Tips, "Not provided") + "\n")
		b.WriteString("Difficulty: " + orDefault(exp.Difficulty, "Not specified") + "\n")
		b.WriteString("Salary: " + orDefault(exp.Salary, "Not specified") + "\n")
		b.WriteString("Offer Status: " + orDefault(exp.OfferStatus, "Not specified") + "\n")
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
