package examgen

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/store"
)

// PurposeExamPart labels LLM calls made for exam parts.
const PurposeExamPart = "exam-part"

// Generator runs the pipeline: build, generate, parse, repair. It holds no
// per-request state and is safe for concurrent use.
type Generator struct {
	registry *blueprint.Registry
	builder  *Builder
	provider llm.Provider
	events   store.EventRepo
	logger   *zap.Logger
	config   Config
}

// Option configures a Generator.
type Option func(*Generator)

// WithEventRepo records repair events in repo.
func WithEventRepo(repo store.EventRepo) Option {
	return func(g *Generator) { g.events = repo }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Generator. The provider is called once per part; wrap it
// with llm.WithRetry beforehand if retries are wanted.
func New(provider llm.Provider, reg *blueprint.Registry, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		registry: reg,
		builder:  NewBuilder(reg, cfg),
		provider: provider,
		logger:   zap.NewNop(),
		config:   cfg,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is generated content plus the repairs applied to each part,
// keyed by blueprint key ("lesen/2").
type Result struct {
	Content *ExamContent
	Repairs map[string]RepairReport
}

// Generate produces validated content for one exam part.
func (g *Generator) Generate(ctx context.Context, req Request) (*ExamContent, error) {
	res, err := g.GenerateDetailed(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Content, nil
}

// GenerateDetailed is Generate returning the repair report as well.
func (g *Generator) GenerateDetailed(ctx context.Context, req Request) (*Result, error) {
	prompt := g.builder.Build(req.Section, req.Part, req.Difficulty)
	if prompt == nil {
		return nil, &ErrInvalidSectionOrPart{Section: string(req.Section), Part: req.Part}
	}

	ctx, requestID := ensureRequestID(ctx)
	part, rep, err := g.generatePart(ctx, prompt, req.Difficulty)
	if err != nil {
		return nil, err
	}

	return &Result{
		Content: g.assemble(requestID, req.Section, []ExamPartContent{part}),
		Repairs: map[string]RepairReport{prompt.Blueprint.Key(): rep},
	}, nil
}

// GenerateSection produces every part of a section concurrently and
// returns them in part order. The first failure cancels the other parts.
func (g *Generator) GenerateSection(ctx context.Context, section blueprint.Section, difficulty string) (*Result, error) {
	bps := g.registry.Parts(section)
	if len(bps) == 0 {
		return nil, &ErrInvalidSectionOrPart{Section: string(section)}
	}

	ctx, requestID := ensureRequestID(ctx)

	parts := make([]ExamPartContent, len(bps))
	reports := make([]RepairReport, len(bps))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.config.Parallelism, 1))
	for i, bp := range bps {
		eg.Go(func() error {
			prompt := g.builder.Build(bp.Section, bp.Part, difficulty)
			part, rep, err := g.generatePart(egCtx, prompt, difficulty)
			if err != nil {
				return err
			}
			parts[i] = part
			reports[i] = rep
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Content: g.assemble(requestID, section, parts),
		Repairs: make(map[string]RepairReport, len(bps)),
	}
	for i, bp := range bps {
		res.Repairs[bp.Key()] = reports[i]
	}
	return res, nil
}

// generatePart performs one model call and turns the reply into content.
func (g *Generator) generatePart(ctx context.Context, prompt *Prompt, difficulty string) (ExamPartContent, RepairReport, error) {
	bp := prompt.Blueprint
	ctx = llm.WithPurpose(ctx, PurposeExamPart)
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	log := g.logger.With(
		zap.String("request_id", llm.RequestIDFrom(ctx)),
		zap.String("blueprint", bp.Key()),
	)

	resp, err := g.provider.Generate(ctx, prompt.Request)
	if err != nil {
		// Providers do not always surface the context error themselves.
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(err, ctxErr)
		}
		log.Warn("exam part generation failed", zap.String("kind", string(KindOf(err))), zap.Error(err))
		return ExamPartContent{}, RepairReport{}, fmt.Errorf("generate %s: %w", bp.Key(), err)
	}

	// A truncated reply still contains complete inner objects that Parse
	// would accept, so it is rejected before parsing.
	if resp.StopReason == llm.StopMaxTokens {
		log.Warn("model reply truncated at max tokens", zap.Int("max_tokens", prompt.Request.MaxTokens))
		return ExamPartContent{}, RepairReport{}, fmt.Errorf("generate %s: %w", bp.Key(), &llm.ErrMaxTokensExceeded{Content: resp.Text})
	}

	payload, err := Parse(resp.Text)
	if err != nil {
		if resp.StopReason == llm.StopRefused {
			log.Warn("model refused to generate the part")
			err = errors.Join(&llm.ErrInvalidResponse{Content: resp.Text, Err: errors.New("refused")}, err)
		} else {
			log.Warn("model reply has no JSON payload", zap.Int("reply_bytes", len(resp.Text)))
		}
		return ExamPartContent{}, RepairReport{}, fmt.Errorf("generate %s: %w", bp.Key(), err)
	}

	if g.config.CheckConformance {
		if cerr := CheckConformance(bp, payload); cerr != nil {
			log.Info("model reply deviates from blueprint schema",
				zap.Strings("violations", llm.Violations(cerr)), zap.Error(cerr))
		}
	}

	part, rep := Repair(payload, bp, difficulty)
	g.reportRepairs(ctx, log, bp, rep)
	return part, rep, nil
}

// reportRepairs logs the RepairApplied signal and records it as events.
func (g *Generator) reportRepairs(ctx context.Context, log *zap.Logger, bp blueprint.Blueprint, rep RepairReport) {
	if rep.Missing > 0 {
		log.Warn("model produced too few questions",
			zap.Int("missing", rep.Missing),
			zap.Int("required", bp.QuestionCount),
		)
	}
	if !rep.Applied() {
		return
	}

	log.Warn("repair applied",
		zap.String("section", string(bp.Section)),
		zap.Int("part", bp.Part),
		zap.String("title", bp.Title),
		zap.Int("repairs", len(rep.Corrections)),
	)
	for _, c := range rep.Corrections {
		log.Debug("correction",
			zap.String("kind", string(c.Kind)),
			zap.Int("question", c.Question),
			zap.String("before", c.Before),
			zap.String("after", c.After),
		)
	}

	if g.events == nil {
		return
	}
	counts := rep.Counts()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	events := make([]store.RepairEventData, 0, len(kinds))
	for _, k := range kinds {
		events = append(events, store.RepairEventData{
			RequestID: llm.RequestIDFrom(ctx),
			Section:   string(bp.Section),
			Part:      bp.Part,
			Kind:      k,
			Count:     counts[RepairKind(k)],
		})
	}
	if err := g.events.AppendRepairs(context.WithoutCancel(ctx), events); err != nil {
		log.Warn("failed to record repair events", zap.Error(err))
	}
}

func (g *Generator) assemble(requestID string, section blueprint.Section, parts []ExamPartContent) *ExamContent {
	content := &ExamContent{
		RequestID:        requestID,
		Title:            section.DisplayName(),
		TimeLimitMinutes: g.registry.TimeLimit(section),
		Parts:            parts,
	}
	if len(parts) == 1 {
		content.Title = parts[0].Title
		content.Instructions = parts[0].Instructions
	}
	for _, p := range parts {
		content.MaxPoints += p.MaxPoints
	}
	return content
}

func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id := llm.RequestIDFrom(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return llm.WithRequestID(ctx, id), id
}
