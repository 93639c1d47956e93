package recipe

// a cleaned recipe. nullable fields are pointers so they encode as null.
type Recipe struct {
	Title       string   `json:"title"`
	Servings    int      `json:"servings"`
	PrepTime    *string  `json:"prepTime"`
	CookTime    *string  `json:"cookTime"`
	ImageURL    *string  `json:"imageUrl"`
	Ingredients []string `json:"ingredients"`
	Steps       []Step   `json:"steps"`
	Tips        []string `json:"tips"`
	Source      string   `json:"source"`
	SourceURL   *string  `json:"sourceUrl"`
	Author      *string  `json:"author"`
}

// one action; Ingredients are verbatim substrings of Recipe.Ingredients entries
type Step struct {
	Instruction string   `json:"instruction"`
	Ingredients []string `json:"ingredients"`
}

// a deterministic quality defect found by Validate
type Issue string

const (
	IssueStepsTooLong Issue = "steps_too_long"
	IssueTooFewSteps  Issue = "too_few_steps"
)

const (
	DefaultTitle    = "Recipe"
	DefaultServings = 4

	// a step instruction longer than this must be split
	MaxStepLength = 400

	// steps whose trimmed instruction is this short or shorter are noise
	MinStepLength = 10

	// ingredient count above which fewer than MinSteps steps is suspicious
	DenseIngredientCount = 5
	MinSteps             = 3
)

// returns a pointer to s, or nil when s is blank
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// dereferences a nullable field
func Deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
