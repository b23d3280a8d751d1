package molecule

import (
	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// MatchSettings selects the algorithm and the post-processing of one search.
type MatchSettings struct {
	Algorithm  substructure.Algorithm
	Mode       substructure.Mode
	Unique     mtypes.UniqueMode
	Limit      int
	Stereo     bool
	Components bool
}

// Service composes compiled queries, target molecules and the matching
// engine.  It holds no per-request state and is safe for concurrent use.
type Service struct {
	logger   logging.Logger
	recorder substructure.Recorder
}

// NewService constructs a molecule domain service.  A nil recorder disables
// match observations.
func NewService(logger logging.Logger, recorder substructure.Recorder) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{logger: logger, recorder: recorder}
}

// Compile builds a pattern for q with the settings' algorithm and mode.
func (s *Service) Compile(q *Query, set MatchSettings) (*substructure.Pattern, error) {
	if q == nil {
		return nil, errors.QueryMalformed("query is nil")
	}
	opts := []substructure.Option{
		substructure.WithAlgorithm(set.Algorithm),
		substructure.WithMode(set.Mode),
		substructure.WithLogger(s.logger.Named("substructure")),
	}
	if s.recorder != nil {
		opts = append(opts, substructure.WithRecorder(s.recorder))
	}
	return substructure.NewPattern(q, opts...)
}

// Mappings returns the lazy mapping sequence of p in target after the
// requested post-filters, uniqueness and limit, applied in that order.  The
// component filter only runs when the query carries a grouping, and the
// stereo filter only when it carries stereo.
func (s *Service) Mappings(p *substructure.Pattern, q *Query, target *Molecule, set MatchSettings) *substructure.Mappings {
	ms := s.filtered(p, q, target, set)
	switch set.Unique {
	case mtypes.UniqueAtoms:
		ms = ms.GetUniqueAtoms()
	case mtypes.UniqueBonds:
		ms = ms.GetUniqueBonds()
	}
	if set.Limit > 0 {
		ms = ms.Limit(set.Limit)
	}
	return ms
}

func (s *Service) filtered(p *substructure.Pattern, q *Query, target *Molecule, set MatchSettings) *substructure.Mappings {
	ms := p.MatchAll(target)
	if set.Components && len(q.Groups()) > 0 {
		ms = ms.Filter(substructure.ComponentFilter(q.Groups(), target))
	}
	if set.Stereo && q.HasStereo() {
		ms = ms.Filter(substructure.StereoFilter(q, target))
	}
	return ms
}

// needsFilters reports whether a search must enumerate mappings rather than
// stop at the engine's first hit.
func needsFilters(q *Query, set MatchSettings) bool {
	return (set.Components && len(q.Groups()) > 0) || (set.Stereo && q.HasStereo())
}

// Contains reports whether target holds at least one mapping that passes the
// requested post-filters.
func (s *Service) Contains(p *substructure.Pattern, q *Query, target *Molecule, set MatchSettings) (bool, error) {
	if !needsFilters(q, set) {
		return p.Matches(target)
	}
	return s.filtered(p, q, target, set).Exists()
}

// CountUnique returns the number of distinct target atom sets holding the
// query after the post-filters.
func (s *Service) CountUnique(p *substructure.Pattern, q *Query, target *Molecule, set MatchSettings) (int, error) {
	return s.filtered(p, q, target, set).CountUnique()
}

// Anchors returns, in ascending order, the target atoms that query atom 0 can
// be mapped to.
func (s *Service) Anchors(p *substructure.Pattern, q *Query, target *Molecule, set MatchSettings) ([]int, error) {
	anchors := make([]int, 0)
	if q.VertexCount() == 0 {
		return anchors, nil
	}
	if !needsFilters(q, set) {
		for v := 0; v < target.VertexCount(); v++ {
			ok, err := p.MatchesRoot(target, v)
			if err != nil {
				return nil, err
			}
			if ok {
				anchors = append(anchors, v)
			}
		}
		return anchors, nil
	}

	hosts := make([]bool, target.VertexCount())
	err := s.filtered(p, q, target, set).Each(func(mapping []int) bool {
		hosts[mapping[0]] = true
		return true
	})
	if err != nil {
		return nil, err
	}
	for v, ok := range hosts {
		if ok {
			anchors = append(anchors, v)
		}
	}
	return anchors, nil
}
