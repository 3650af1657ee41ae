package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matzehuels/designtree/pkg/design"
)

// ErrMalformedAnswer is returned when a classifier response cannot be parsed
// into a known role.
var ErrMalformedAnswer = errors.New("malformed classifier answer")

// MaxAnswerBytes bounds the size of a classifier response.
const MaxAnswerBytes = 64 << 10

type answer struct {
	Role       string `json:"role"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// ParseAnswer parses a classifier response. A JSON object must name a known
// role; a missing confidence defaults to medium. Any other non-empty text is
// taken as a bare role label with medium confidence.
func ParseAnswer(body []byte) (design.Classification, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return design.Classification{}, fmt.Errorf("%w: empty", ErrMalformedAnswer)
	}

	if body[0] == '{' {
		var a answer
		if err := json.Unmarshal(body, &a); err != nil {
			return design.Classification{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
		}
		role, err := design.ParseRole(a.Role)
		if err != nil {
			return design.Classification{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
		}
		conf := design.ConfidenceMedium
		if a.Confidence != "" {
			if conf, err = design.ParseConfidence(a.Confidence); err != nil {
				return design.Classification{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
			}
		}
		return design.Classification{Role: role, Confidence: conf, Reason: a.Reason}, nil
	}

	role, err := design.ParseRole(string(body))
	if err != nil {
		return design.Classification{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}
	return design.Classification{Role: role, Confidence: design.ConfidenceMedium}, nil
}
