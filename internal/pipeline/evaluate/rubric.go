// internal/pipeline/evaluate/rubric.go
package evaluate

import "fmt"

// Criterion is one weighted entry of the evaluation rubric.
type Criterion struct {
	Key         string
	Description string
	Weight      int
}

// Rubric is the ordered, immutable set of criteria applied to every CV.
// It is injected at construction so tests can run with alternate rubrics.
type Rubric []Criterion

// TotalWeight sums all criterion weights.
func (r Rubric) TotalWeight() int {
	total := 0
	for _, c := range r.Criteria() {
		total += c.Weight
	}
	return total
}

func (r Rubric) Criteria() []Criterion {
	return []Criterion(r)
}

// Validate checks weight bounds and that weights sum to 100.
func (r Rubric) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("rubric is empty")
	}
	seen := make(map[string]bool, len(r))
	for _, c := range r {
		if c.Key == "" {
			return fmt.Errorf("rubric criterion with empty key")
		}
		if seen[c.Key] {
			return fmt.Errorf("duplicate rubric criterion %q", c.Key)
		}
		seen[c.Key] = true
		if c.Weight < 0 || c.Weight > 100 {
			return fmt.Errorf("criterion %q weight %d out of range", c.Key, c.Weight)
		}
	}
	if total := r.TotalWeight(); total != 100 {
		return fmt.Errorf("rubric weights sum to %d, want 100", total)
	}
	return nil
}

// DefaultRubric returns the standard CV screening rubric.
func DefaultRubric() Rubric {
	return Rubric{
		{Key: "relevance", Weight: 20,
			Description: "Le document doit être un CV et non un autre type de document (cours, lettre, etc.)."},
		{Key: "experience", Weight: 20,
			Description: "Le CV doit détailler les expériences professionnelles avec dates, postes, entreprises et responsabilités."},
		{Key: "skills", Weight: 15,
			Description: "Les compétences techniques et transversales doivent être clairement identifiables."},
		{Key: "education", Weight: 10,
			Description: "Les diplômes et formations doivent être listés avec dates, établissements et spécialités."},
		{Key: "languages", Weight: 5,
			Description: "Les langues maîtrisées doivent être mentionnées avec le niveau de compétence."},
		{Key: "contact", Weight: 5,
			Description: "Les informations de contact (email, téléphone) doivent être présentes et complètes."},
		{Key: "format", Weight: 5,
			Description: "Le CV doit être au format PDF et bien structuré."},
		{Key: "readability", Weight: 10,
			Description: "Le CV doit être facile à lire, aéré et utiliser une typographie claire."},
		{Key: "length", Weight: 5,
			Description: "Le CV doit avoir une longueur appropriée (1-4 pages selon l'expérience)."},
		{Key: "design", Weight: 5,
			Description: "Le design doit être professionnel, sobre et sans photo."},
	}
}
