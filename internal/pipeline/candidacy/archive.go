// internal/pipeline/candidacy/archive.go
package candidacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"cv-screening/internal/common/logger"
)

// Archive indexes finished evaluations into Elasticsearch so recruiters
// can search past candidatures by score, status or criterion.
type Archive struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewArchive(client *elasticsearch.Client, index string, log logger.Logger) *Archive {
	if index == "" {
		index = "cv-evaluations"
	}
	return &Archive{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "evaluation-archive"}),
	}
}

// archivedEvaluation is the indexed document shape.
type archivedEvaluation struct {
	CandidatureID string    `json:"candidature_id"`
	Reference     string    `json:"reference"`
	JobTitle      string    `json:"job_title"`
	Score         float64   `json:"score"`
	Passed        bool      `json:"passed"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	IndexedAt     time.Time `json:"indexed_at"`
}

// Index stores the candidature's evaluation outcome. Indexing is best
// effort from the pipeline's point of view; callers log the error and
// continue.
func (a *Archive) Index(ctx context.Context, c *Candidature) error {
	doc := archivedEvaluation{
		CandidatureID: c.ID.String(),
		Reference:     c.Reference,
		JobTitle:      c.JobTitle,
		Score:         c.Score,
		Passed:        c.Passed,
		Status:        string(c.Status),
		Message:       c.Message,
		IndexedAt:     time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal evaluation document: %w", err)
	}

	res, err := a.client.Index(
		a.index,
		bytes.NewReader(body),
		a.client.Index.WithDocumentID(c.ID.String()),
		a.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index evaluation: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index evaluation: %s", res.Status())
	}

	a.logger.Debug("evaluation archived", map[string]interface{}{
		"candidature_id": c.ID.String(),
		"index":          a.index,
	})
	return nil
}
