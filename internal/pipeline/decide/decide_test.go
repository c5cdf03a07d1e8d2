// internal/pipeline/decide/decide_test.go
package decide

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cv-screening/internal/pipeline/candidacy"
	"cv-screening/internal/pipeline/evaluate"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		result evaluate.EvaluationResult
		want   Decision
	}{
		{
			name:   "evaluation failure goes to manual review",
			result: evaluate.EvaluationResult{Success: false},
			want:   Decision{Status: candidacy.StatusEnCours, Variant: VariantError},
		},
		{
			name:   "passing score stays en cours with accepted notification",
			result: evaluate.EvaluationResult{Success: true, Score: 92, Passed: true},
			want:   Decision{Status: candidacy.StatusEnCours, Variant: VariantAccepted},
		},
		{
			name:   "threshold score passes",
			result: evaluate.EvaluationResult{Success: true, Score: 50, Passed: true},
			want:   Decision{Status: candidacy.StatusEnCours, Variant: VariantAccepted},
		},
		{
			name:   "failing score is refused",
			result: evaluate.EvaluationResult{Success: true, Score: 40, Passed: false},
			want:   Decision{Status: candidacy.StatusRefusee, Variant: VariantRejected},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(&tt.result))
		})
	}
}
