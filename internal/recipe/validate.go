package recipe

import (
	"strings"
	"unicode/utf8"
)

// returns the quality issues a repair pass should address; nil when clean
func Validate(r Recipe) []Issue {
	var issues []Issue

	for _, s := range r.Steps {
		if utf8.RuneCountInString(s.Instruction) > MaxStepLength {
			issues = append(issues, IssueStepsTooLong)
			break
		}
	}

	if len(r.Ingredients) > DenseIngredientCount && len(r.Steps) < MinSteps {
		issues = append(issues, IssueTooFewSteps)
	}

	return issues
}

// keeps only step ingredients that appear verbatim inside a top-level entry
func LinkStepIngredients(r Recipe) Recipe {
	steps := make([]Step, len(r.Steps))

	for i, s := range r.Steps {
		linked := make([]string, 0, len(s.Ingredients))

		for _, ref := range s.Ingredients {
			if ref == "" {
				continue
			}

			for _, ing := range r.Ingredients {
				if strings.Contains(ing, ref) {
					linked = append(linked, ref)
					break
				}
			}
		}

		steps[i] = Step{Instruction: s.Instruction, Ingredients: linked}
	}

	r.Steps = steps
	return r
}
