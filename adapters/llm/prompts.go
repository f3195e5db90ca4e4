package llm

import (
	"fmt"
	"strings"

	"github.com/khoahotran/career-compass/internal/domain/analysis"
)

const maxCVChars = 20000

const systemPrompt = `You are an experienced career counsellor. Always answer with a single JSON object of the form:
{"career_paths": [{"career_path": string, "suitability_reason": string, "required_skills": [string], "roadmap": [{"step": integer, "action": string, "details": string}]}]}
Do not add any text outside the JSON object.`

func profileBlock(p analysis.ProfileSnapshot) string {
	cv := p.CVText
	if len(cv) > maxCVChars {
		cv = cv[:maxCVChars]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Degree: %s\n", p.Degree)
	fmt.Fprintf(&b, "Qualifications: %s\n", p.Qualifications)
	fmt.Fprintf(&b, "Skills: %s\n", p.Skills)
	fmt.Fprintf(&b, "CV:\n%s\n", cv)
	return b.String()
}

func analyzePrompt(p analysis.ProfileSnapshot) string {
	return "Based on the candidate profile below, suggest the 3 most suitable career paths. " +
		"For each one explain why it suits the candidate, list the skills it requires and give " +
		"a step-by-step roadmap of 4 to 6 steps.\n\n" + profileBlock(p)
}

func searchPrompt(p analysis.ProfileSnapshot, query string) string {
	return fmt.Sprintf("The candidate below wants to pursue the career %q. "+
		"Return exactly one career path for it: explain how well it suits the candidate, "+
		"list the skills it requires and give a step-by-step roadmap of 4 to 6 steps that "+
		"starts from the candidate's current position.\n\n%s", query, profileBlock(p))
}
