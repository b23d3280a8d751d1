// Package molecule provides the application-level service for substructure
// matching.  It sits between the HTTP/CLI adapters and the domain engine:
// DTOs in, DTOs out, with configuration defaults, caching, metrics and
// logging applied here.
package molecule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/turtacn/KeyIP-Substructure/internal/config"
	domainMol "github.com/turtacn/KeyIP-Substructure/internal/domain/molecule"
	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
	"golang.org/x/sync/errgroup"
)

// Service defines the substructure matching operations.
type Service interface {
	Match(ctx context.Context, req *mtypes.MatchRequestDTO) (*mtypes.MatchResultDTO, error)
	Screen(ctx context.Context, req *mtypes.ScreenRequestDTO) (*mtypes.ScreenResultDTO, error)
	Anchors(ctx context.Context, req *mtypes.AnchorRequestDTO) (*mtypes.AnchorResultDTO, error)
}

// HitCache is the part of the screening cache the service uses.
type HitCache interface {
	Lookup(ctx context.Context, queryKey string, moleculeKeys []string) (map[string]redis.HitEntry, error)
	Store(ctx context.Context, queryKey string, entries map[string]redis.HitEntry) error
}

// Metrics receives engine observations and screening summaries.
type Metrics interface {
	substructure.Recorder
	RecordScreen(algorithm string, screened, hits int, duration time.Duration, failed bool)
	RecordCacheAccess(outcome string, n int)
	TrackScreen(algorithm string) func()
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*serviceImpl)

// WithHitCache enables the screening cache.
func WithHitCache(c HitCache) ServiceOption {
	return func(s *serviceImpl) { s.cache = c }
}

// WithMetrics enables metrics.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *serviceImpl) { s.metrics = m }
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	cfg     config.MatcherConfig
	domain  *domainMol.Service
	cache   HitCache
	metrics Metrics
	logger  logging.Logger
}

// NewService creates a new matching application service.  cfg supplies the
// defaults for options a request leaves unset and the screening limits.
func NewService(cfg config.MatcherConfig, logger logging.Logger, opts ...ServiceOption) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.ScreenWorkers < 1 {
		s.cfg.ScreenWorkers = 1
	}
	var rec substructure.Recorder
	if s.metrics != nil {
		rec = s.metrics
	}
	s.domain = domainMol.NewService(logger, rec)
	return s
}

// resolve merges request options over the configured defaults.
func (s *serviceImpl) resolve(opts mtypes.MatchOptionsDTO, defaultAlgorithm string) (domainMol.MatchSettings, error) {
	if err := opts.Validate(); err != nil {
		return domainMol.MatchSettings{}, err
	}
	algName := opts.Algorithm
	if algName == "" {
		algName = defaultAlgorithm
	}
	alg, err := substructure.ParseAlgorithm(algName)
	if err != nil {
		return domainMol.MatchSettings{}, err
	}
	modeName := opts.Mode
	if modeName == "" {
		modeName = s.cfg.Mode
	}
	mode, err := substructure.ParseMode(modeName)
	if err != nil {
		return domainMol.MatchSettings{}, err
	}
	unique := opts.Unique
	if unique == "" {
		unique = mtypes.UniqueMode(s.cfg.Unique)
	}
	limit := opts.Limit
	if limit == 0 {
		limit = s.cfg.Limit
	}
	return domainMol.MatchSettings{
		Algorithm:  alg,
		Mode:       mode,
		Unique:     unique,
		Limit:      limit,
		Stereo:     opts.Stereo || s.cfg.Stereo,
		Components: opts.Components || s.cfg.Components,
	}, nil
}

// prepare compiles the query and the settings shared by every operation.
func (s *serviceImpl) prepare(q *mtypes.QueryDTO, opts mtypes.MatchOptionsDTO, defaultAlgorithm string) (*domainMol.Query, *substructure.Pattern, domainMol.MatchSettings, error) {
	set, err := s.resolve(opts, defaultAlgorithm)
	if err != nil {
		return nil, nil, set, err
	}
	query, err := domainMol.CompileQuery(q)
	if err != nil {
		return nil, nil, set, err
	}
	p, err := s.domain.Compile(query, set)
	if err != nil {
		return nil, nil, set, err
	}
	return query, p, set, nil
}

func (s *serviceImpl) Match(ctx context.Context, req *mtypes.MatchRequestDTO) (*mtypes.MatchResultDTO, error) {
	if req == nil {
		return nil, errors.InvalidParam("match request is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "match cancelled")
	}
	start := time.Now()

	query, p, set, err := s.prepare(&req.Query, req.Options, s.cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	target, err := domainMol.FromDTO(&req.Target)
	if err != nil {
		return nil, err
	}

	// One mapping past the cap tells a truncated result from an exact fit.
	maxMappings := s.cfg.MaxMappings
	capped := maxMappings > 0 && (set.Limit == 0 || set.Limit > maxMappings)
	run := set
	if capped {
		run.Limit = maxMappings + 1
	}

	maps, err := s.domain.Mappings(p, query, target, run).ToAtomBondMaps().ToArray()
	if err != nil {
		s.logger.Error("match failed", logging.String("target_id", target.ID), logging.Err(err))
		return nil, err
	}
	truncated := capped && len(maps) > maxMappings
	if truncated {
		maps = maps[:maxMappings]
	}

	out := &mtypes.MatchResultDTO{
		Matched:   len(maps) > 0,
		Count:     len(maps),
		Mappings:  make([][]int, len(maps)),
		AtomMaps:  make([]map[int]int, len(maps)),
		BondMaps:  make([]map[int]int, len(maps)),
		Algorithm: set.Algorithm.String(),
		Mode:      set.Mode.String(),
		Unique:    set.Unique,
		Truncated: truncated,
	}
	n := query.VertexCount()
	for i, m := range maps {
		mapping := make([]int, n)
		for q := 0; q < n; q++ {
			mapping[q] = m.Atoms[q]
		}
		out.Mappings[i] = mapping
		out.AtomMaps[i] = m.Atoms
		out.BondMaps[i] = m.Bonds
	}

	s.logger.Debug("match finished",
		logging.String("target_id", target.ID),
		logging.String("algorithm", out.Algorithm),
		logging.Int("count", out.Count),
		logging.Bool("truncated", truncated),
		logging.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func (s *serviceImpl) Anchors(ctx context.Context, req *mtypes.AnchorRequestDTO) (*mtypes.AnchorResultDTO, error) {
	if req == nil {
		return nil, errors.InvalidParam("anchor request is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "anchor search cancelled")
	}
	query, p, set, err := s.prepare(&req.Query, req.Options, s.cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	target, err := domainMol.FromDTO(&req.Target)
	if err != nil {
		return nil, err
	}
	anchors, err := s.domain.Anchors(p, query, target, set)
	if err != nil {
		return nil, err
	}
	return &mtypes.AnchorResultDTO{Anchors: anchors, Count: len(anchors)}, nil
}

// screenKey identifies everything that decides a screening outcome apart from
// the library molecule itself.
type screenKey struct {
	Query      mtypes.QueryDTO `json:"q"`
	Mode       string          `json:"mode"`
	Stereo     bool            `json:"stereo"`
	Components bool            `json:"components"`
	CountHits  bool            `json:"count"`
}

func (s *serviceImpl) Screen(ctx context.Context, req *mtypes.ScreenRequestDTO) (*mtypes.ScreenResultDTO, error) {
	if req == nil {
		return nil, errors.InvalidParam("screen request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.cfg.MaxLibrarySize > 0 && len(req.Library) > s.cfg.MaxLibrarySize {
		return nil, errors.New(errors.ErrCodeScreenLibraryTooBig, "screening library exceeds the configured size").
			WithDetailf("size=%d max=%d", len(req.Library), s.cfg.MaxLibrarySize)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "screening cancelled")
	}

	query, p, set, err := s.prepare(&req.Query, req.Options, s.cfg.ScreenAlgorithm)
	if err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	log := s.logger.With(logging.String("job_id", jobID))
	alg := set.Algorithm.String()
	start := time.Now()
	if s.metrics != nil {
		defer s.metrics.TrackScreen(alg)()
	}

	entries := make([]redis.HitEntry, len(req.Library))
	cached := make([]bool, len(req.Library))
	queryKey, moleculeKeys := s.lookup(ctx, log, req, set, entries, cached)

	fresh := make(map[string]redis.HitEntry)
	freshIdx := make([]bool, len(req.Library))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ScreenWorkers)
	for i := range req.Library {
		if cached[i] {
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Wrap(err, errors.ErrCodeTimeout, "screening cancelled")
			}
			target, err := domainMol.FromDTO(&req.Library[i])
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown, "invalid library molecule").WithDetailf("index=%d", i)
			}
			e, err := s.screenOne(p, query, target, set, req.CountHits)
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown, "screening failed").WithDetailf("index=%d", i)
			}
			entries[i] = e
			freshIdx[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if s.metrics != nil {
			s.metrics.RecordScreen(alg, 0, 0, time.Since(start), true)
		}
		log.Warn("screening aborted", logging.Err(err))
		return nil, err
	}

	out := &mtypes.ScreenResultDTO{
		JobID:     jobID,
		Screened:  len(req.Library),
		Hits:      make([]mtypes.ScreenHitDTO, 0),
		Algorithm: alg,
	}
	for i, e := range entries {
		if cached[i] {
			out.CacheHits++
		} else if freshIdx[i] && moleculeKeys != nil {
			fresh[moleculeKeys[i]] = e
		}
		if !e.Matched {
			continue
		}
		mol := req.Library[i]
		out.Hits = append(out.Hits, mtypes.ScreenHitDTO{
			Index:      i,
			MoleculeID: mol.ID,
			Name:       mol.Name,
			MatchCount: e.Count,
			Cached:     cached[i],
		})
	}
	out.HitCount = len(out.Hits)

	if s.cache != nil && queryKey != "" && len(fresh) > 0 {
		if err := s.cache.Store(ctx, queryKey, fresh); err != nil {
			log.Warn("failed to store screening hits", logging.Err(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordScreen(alg, out.Screened, out.HitCount, time.Since(start), false)
	}
	log.Info("screening finished",
		logging.String("algorithm", alg),
		logging.Int("screened", out.Screened),
		logging.Int("hits", out.HitCount),
		logging.Int("cache_hits", out.CacheHits),
		logging.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// lookup fills entries from the cache and returns the keys used.  Any cache
// failure degrades to a full screen.
func (s *serviceImpl) lookup(ctx context.Context, log logging.Logger, req *mtypes.ScreenRequestDTO, set domainMol.MatchSettings, entries []redis.HitEntry, cached []bool) (string, []string) {
	if s.cache == nil {
		return "", nil
	}
	queryKey, err := redis.Fingerprint(screenKey{
		Query:      req.Query,
		Mode:       set.Mode.String(),
		Stereo:     set.Stereo,
		Components: set.Components,
		CountHits:  req.CountHits,
	})
	if err != nil {
		log.Warn("cannot fingerprint query, cache bypassed", logging.Err(err))
		return "", nil
	}
	keys := make([]string, len(req.Library))
	for i := range req.Library {
		if keys[i], err = redis.Fingerprint(req.Library[i]); err != nil {
			log.Warn("cannot fingerprint library molecule, cache bypassed", logging.Int("index", i), logging.Err(err))
			return "", nil
		}
	}

	found, err := s.cache.Lookup(ctx, queryKey, keys)
	if err != nil {
		log.Warn("screening cache lookup failed", logging.Err(err))
		if s.metrics != nil {
			s.metrics.RecordCacheAccess("error", 1)
		}
		return queryKey, keys
	}
	hits := 0
	for i, k := range keys {
		if e, ok := found[k]; ok {
			entries[i] = e
			cached[i] = true
			hits++
		}
	}
	if s.metrics != nil {
		s.metrics.RecordCacheAccess("hit", hits)
		s.metrics.RecordCacheAccess("miss", len(keys)-hits)
	}
	return queryKey, keys
}

// screenOne decides one library molecule.  Counting enumerates unique atom
// sets; otherwise the search stops at the first admissible mapping.
func (s *serviceImpl) screenOne(p *substructure.Pattern, q *domainMol.Query, target *domainMol.Molecule, set domainMol.MatchSettings, count bool) (redis.HitEntry, error) {
	if count {
		n, err := s.domain.CountUnique(p, q, target, set)
		if err != nil {
			return redis.HitEntry{}, err
		}
		return redis.HitEntry{Matched: n > 0, Count: n}, nil
	}
	ok, err := s.domain.Contains(p, q, target, set)
	if err != nil {
		return redis.HitEntry{}, err
	}
	return redis.HitEntry{Matched: ok}, nil
}
