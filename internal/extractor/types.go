package extractor

import (
	"errors"

	"codeberg.org/mise/server/internal/llm"
)

// the model answered without a parseable JSON object
var ErrNoStructuredJSON = errors.New("ai response contained no structured recipe")

// the recipe handed to a transform is unusable
var ErrInvalidRecipe = errors.New("recipe is missing required fields")

type Operation string

const (
	OpExtractPage       Operation = "extract_page"
	OpExtractPhotos     Operation = "extract_photos"
	OpExtractTranscript Operation = "extract_transcript"
	OpEnhance           Operation = "enhance"
	OpRepair            Operation = "repair"
	OpTranslate         Operation = "translate"
)

// one billable model invocation. returned whenever the provider was
// reached, even if the response was unusable, so its cost can be recorded.
type Call struct {
	Operation Operation
	Model     string
	Usage     llm.Usage
	Cost      float64
}

const (
	// page text beyond this many runes is cut before prompting
	MaxPageChars = 30000

	// transcripts beyond this many runes are cut before prompting
	MaxTranscriptChars = 40000
)
