package recipes

import "codeberg.org/mise/server/internal/recipe"

type CleanURLRequest struct {
	URL         string `json:"url" binding:"required"`
	Language    string `json:"language"`
	Fingerprint string `json:"fingerprint"`
}

type CleanPhotoRequest struct {
	Photos      []string `json:"photos" binding:"required,min=1"`
	Language    string   `json:"language"`
	Fingerprint string   `json:"fingerprint"`
}

type CleanYouTubeRequest struct {
	URL         string `json:"url" binding:"required"`
	Language    string `json:"language"`
	Fingerprint string `json:"fingerprint"`
}

type TranslateRequest struct {
	Recipe         recipe.Recipe `json:"recipe"`
	TargetLanguage string        `json:"targetLanguage" binding:"required"`
}

// recipesRemaining is -1 for unlimited tiers
type CleanResponse struct {
	Recipe           recipe.Recipe `json:"recipe"`
	RecipesRemaining int           `json:"recipesRemaining"`
}

type TranslateResponse struct {
	Recipe recipe.Recipe `json:"recipe"`
}
