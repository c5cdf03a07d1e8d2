// internal/pipeline/results/store.go

// Package results caches finished evaluations in Redis so the result
// page can render without re-running the pipeline.
package results

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"cv-screening/internal/common/errors"
	"cv-screening/internal/common/logger"
	"cv-screening/internal/pipeline/evaluate"
)

const keyPrefix = "cv_analysis:"

// DefaultTTL bounds cached results to roughly one browsing session.
const DefaultTTL = 30 * time.Minute

type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(client *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "result-store"}),
	}
}

// Put caches the evaluation result under the submission id.
func (s *Store) Put(ctx context.Context, submissionID string, result *evaluate.EvaluationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.NewResultCacheFailedError(err)
	}

	if err := s.client.Set(ctx, keyPrefix+submissionID, payload, s.ttl).Err(); err != nil {
		return errors.NewResultCacheFailedError(err)
	}

	s.logger.Debug("result cached", map[string]interface{}{
		"submission_id": submissionID,
		"ttl":           s.ttl.String(),
	})
	return nil
}

// Get returns the cached result, or nil when the id is unknown or the
// entry expired.
func (s *Store) Get(ctx context.Context, submissionID string) (*evaluate.EvaluationResult, error) {
	payload, err := s.client.Get(ctx, keyPrefix+submissionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewResultCacheFailedError(err)
	}

	var result evaluate.EvaluationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errors.NewResultCacheFailedError(err)
	}
	return &result, nil
}
