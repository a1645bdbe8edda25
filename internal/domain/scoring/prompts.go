package scoring

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/okian/talentscore/internal/domain/model"
)

// Generation settings for category scoring.
const (
	CategoryMaxTokens   = 1000
	CategoryTemperature = 0.3
)

//go:embed prompts/category.md
var categoryTemplate string

var categoryFocus = map[model.Category][]string{
	model.CategoryTechnical: {
		"Coding assessment performance",
		"Technical interview responses",
		"Problem-solving approach",
		"Code quality and best practices",
		"Depth of technical knowledge",
	},
	model.CategoryCommunication: {
		"Clarity of written responses",
		"Verbal communication in interviews",
		"Ability to explain complex concepts",
		"Active listening and engagement",
		"Professional language use",
	},
	model.CategoryCulturalFit: {
		"Alignment with company values",
		"Team collaboration indicators",
		"Work style preferences",
		"Motivation and enthusiasm",
		"Long-term career alignment",
	},
	model.CategoryCognitive: {
		"Problem-solving approach",
		"Analytical thinking",
		"Learning ability",
		"Pattern recognition",
		"Decision-making process",
	},
	model.CategoryBehavioral: {
		"Leadership potential",
		"Adaptability and flexibility",
		"Stress management",
		"Initiative and proactivity",
		"Interpersonal skills",
	},
}

func categoryLabel(c model.Category) string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// CategoryPrompt builds the generation request for one category.
func CategoryPrompt(c model.Category, evidenceJSON string) Prompt {
	var focus strings.Builder
	fmt.Fprintf(&focus, "Evaluate %s based on:\n", categoryLabel(c))
	for _, item := range categoryFocus[c] {
		focus.WriteString("- ")
		focus.WriteString(item)
		focus.WriteString("\n")
	}

	user := strings.ReplaceAll(categoryTemplate, "{{CATEGORY}}", categoryLabel(c))
	user = strings.ReplaceAll(user, "{{FOCUS}}", strings.TrimSpace(focus.String()))
	user = strings.ReplaceAll(user, "{{EVIDENCE_JSON}}", evidenceJSON)

	return Prompt{
		System:      fmt.Sprintf("You are an expert in evaluating %s skills for recruitment. Provide objective, detailed analysis.", categoryLabel(c)),
		User:        user,
		MaxTokens:   CategoryMaxTokens,
		Temperature: CategoryTemperature,
	}
}
