// services/evaluator.go - Requirement evaluation
package services

import (
	"errors"
	"fmt"
	"vibely/models"
)

// ErrMalformedRequirement marks a catalog entry whose requirement cannot be
// evaluated (unknown variant, missing fields). The orchestrator logs it as a
// data-quality warning and treats the entry as not satisfied; one bad catalog
// entry never aborts a pass.
var ErrMalformedRequirement = errors.New("malformed requirement")

// Evaluation is the result of matching one requirement against a snapshot.
type Evaluation struct {
	Progress  float64
	Satisfied bool
}

// Evaluate maps a statistic snapshot against one requirement spec. Pure: no
// I/O, no persistence. Boolean requirements report binary 0/1 progress.
func Evaluate(snap *UserStatSnapshot, req models.RequirementSpec) (Evaluation, error) {
	switch req.Type {
	case models.RequirementCountTarget:
		if req.Target <= 0 {
			return Evaluation{}, fmt.Errorf("%w: count_target needs a positive target", ErrMalformedRequirement)
		}
		progress, ok := snap.Count(req.Metric)
		if !ok {
			return Evaluation{}, fmt.Errorf("%w: unknown metric %q", ErrMalformedRequirement, req.Metric)
		}
		return Evaluation{Progress: progress, Satisfied: progress >= req.Target}, nil

	case models.RequirementBestOfCollection:
		if req.Target <= 0 {
			return Evaluation{}, fmt.Errorf("%w: best_of_collection needs a positive target", ErrMalformedRequirement)
		}
		var progress float64
		switch req.Collection {
		case models.CollectionPosts:
			progress = snap.MaxPostLikes
		case models.CollectionVideos:
			progress = snap.MaxVideoViews
		default:
			return Evaluation{}, fmt.Errorf("%w: unknown collection %q", ErrMalformedRequirement, req.Collection)
		}
		return Evaluation{Progress: progress, Satisfied: progress >= req.Target}, nil

	case models.RequirementDateBefore:
		if req.Cutoff == nil {
			return Evaluation{}, fmt.Errorf("%w: date_before needs a cutoff", ErrMalformedRequirement)
		}
		if !snap.CreatedAt.After(*req.Cutoff) {
			return Evaluation{Progress: 1, Satisfied: true}, nil
		}
		return Evaluation{Progress: 0, Satisfied: false}, nil

	default:
		return Evaluation{}, fmt.Errorf("%w: unknown requirement type %q", ErrMalformedRequirement, req.Type)
	}
}
