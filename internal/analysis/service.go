package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/puddle/v2"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	// MaxWorkers caps how many analyses run concurrently.
	MaxWorkers int `conf:"max_workers"`

	// TaskRetentionMinutes is how long finished tasks stay queryable.
	TaskRetentionMinutes int `conf:"task_retention_minutes"`

	AIBaseURL string `conf:"ai_base_url"`
	AIModel   string `conf:"ai_model"`
}

type ServiceParams struct {
	fx.In

	Context context.Context
	Config  Config
	Factory AnalyzerFactory
	AI      AIClient

	Log *zap.Logger
}

// Service owns the analyzer pool, the task store and the history
// store. Submissions return immediately; the run happens on a pooled
// analyzer in the background.
type Service struct {
	ctx     context.Context
	pool    *puddle.Pool[Analyzer]
	tasks   *cache.Cache
	history *HistoryStore
	ai      AIClient
	log     *zap.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	maxWorkers := params.Config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	pool, err := puddle.NewPool(&puddle.Config[Analyzer]{
		Constructor: func(ctx context.Context) (Analyzer, error) {
			return params.Factory(ctx)
		},
		Destructor: func(Analyzer) {},
		MaxSize:    int32(maxWorkers),
	})
	if err != nil {
		return nil, fmt.Errorf("create analyzer pool: %w", err)
	}

	retention := params.Config.TaskRetentionMinutes
	if retention <= 0 {
		retention = 60
	}

	return &Service{
		ctx:     params.Context,
		pool:    pool,
		tasks:   cache.New(time.Duration(retention)*time.Minute, 10*time.Minute),
		history: NewHistoryStore(),
		ai:      params.AI,
		log:     params.Log.Named("analysis"),
	}, nil
}

func NewLifecycleService(params ServiceParams, lc fx.Lifecycle) (*Service, error) {
	service, err := NewService(params)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			service.Close()
			return nil
		},
	})

	return service, nil
}

// Close waits for in-flight runs and shuts the pool down.
func (s *Service) Close() {
	s.pool.Close()
}

// Submit queues an analysis for one fund and returns the tracking task.
func (s *Service) Submit(code, reportType string, snapshot bool) Task {
	if reportType == "" {
		reportType = "full"
	}

	task := Task{
		ID:         uuid.NewString(),
		Code:       code,
		ReportType: reportType,
		Status:     TaskPending,
		CreatedAt:  time.Now(),
	}
	s.putTask(task)

	s.log.Info("analysis queued",
		zap.String("task", task.ID),
		zap.String("code", code),
		zap.String("report_type", reportType),
	)

	go s.run(task, snapshot)

	return task
}

// RunAll queues an analysis for every code.
func (s *Service) RunAll(codes []string, reportType string) []Task {
	tasks := make([]Task, 0, len(codes))
	for _, code := range codes {
		tasks = append(tasks, s.Submit(code, reportType, false))
	}
	return tasks
}

func (s *Service) run(task Task, snapshot bool) {
	resource, err := s.pool.Acquire(s.ctx)
	if err != nil {
		s.finish(task, snapshot, Result{}, fmt.Errorf("acquire analyzer: %w", err))
		return
	}

	task.Status = TaskRunning
	s.putTask(task)

	result, err := resource.Value().Analyze(s.ctx, task.Code, task.ReportType)
	if err != nil {
		resource.Destroy()
	} else {
		resource.Release()
	}

	s.finish(task, snapshot, result, err)
}

func (s *Service) finish(task Task, snapshot bool, result Result, runErr error) {
	now := time.Now()
	task.FinishedAt = &now

	record := Record{
		QueryID:    task.ID,
		Code:       task.Code,
		Name:       result.Name,
		ReportType: task.ReportType,
		Snapshot:   snapshot,
	}

	if runErr != nil {
		task.Status = TaskFailed
		task.Error = runErr.Error()
		record.Error = runErr.Error()
		if record.Name == "" {
			record.Name = "fund " + task.Code
		}

		s.log.Error("analysis failed",
			zap.String("task", task.ID),
			zap.String("code", task.Code),
			zap.Error(runErr),
		)
	} else {
		task.Status = TaskSucceeded
		record.Success = true
		record.Advice = result.Advice
		record.Score = result.Score
		record.Trend = result.Trend
		record.Summary = result.Summary

		s.log.Info("analysis finished",
			zap.String("task", task.ID),
			zap.String("code", task.Code),
			zap.String("advice", result.Advice),
			zap.Int("score", result.Score),
		)
	}

	s.history.Add(record)
	s.putTask(task)
}

func (s *Service) putTask(task Task) {
	s.tasks.SetDefault(task.ID, task)
}

// TaskStatus returns the tracked task for an id.
func (s *Service) TaskStatus(id string) (Task, bool) {
	value, ok := s.tasks.Get(id)
	if !ok {
		return Task{}, false
	}
	return value.(Task), true
}

// Tasks returns tracked tasks, newest first, at most limit.
func (s *Service) Tasks(limit int) []Task {
	items := s.tasks.Items()

	tasks := make([]Task, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, item.Object.(Task))
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks
}

// History pages through stored records.
func (s *Service) History(q HistoryQuery) []Record {
	return s.history.Find(q)
}

// HistoryCount returns how many records match the query's filters.
func (s *Service) HistoryCount(q HistoryQuery) int {
	return s.history.Count(q)
}

// HistoryRecord returns one record by id.
func (s *Service) HistoryRecord(id int64) (Record, bool) {
	return s.history.Get(id)
}

// LatestSuccessful returns the newest successful record per code.
func (s *Service) LatestSuccessful(codes []string) map[string]Record {
	return s.history.LatestSuccessful(codes)
}

// RunMarketReview synthesizes a portfolio-wide review from the latest
// successful analysis of each code. It runs synchronously.
func (s *Service) RunMarketReview(ctx context.Context, codes []string) (Record, error) {
	latest := s.history.LatestSuccessful(codes)
	if len(latest) == 0 {
		return Record{}, errors.New("no successful analyses to review yet")
	}

	report, err := s.ai.Complete(ctx, buildReviewPrompt(codes, latest))
	if err != nil {
		failed := s.history.Add(Record{
			QueryID:    "market_review_" + uuid.NewString()[:8],
			Code:       MarketReviewCode,
			Name:       "Portfolio review",
			ReportType: "full",
			Error:      err.Error(),
		})
		return failed, fmt.Errorf("market review: %w", err)
	}

	record := s.history.Add(Record{
		QueryID:    "market_review_" + uuid.NewString()[:8],
		Code:       MarketReviewCode,
		Name:       "Portfolio review",
		Success:    true,
		Summary:    report,
		ReportType: "full",
	})

	s.log.Info("market review generated", zap.Int64("record", record.ID))

	return record, nil
}

func buildReviewPrompt(codes []string, latest map[string]Record) string {
	var b strings.Builder

	b.WriteString("You are a portfolio strategist. Write a market review ")
	b.WriteString("for the portfolio below based on the latest per-fund verdicts.\n\n")

	for _, code := range codes {
		record, ok := latest[code]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %s, score %d, trend %s. %s\n",
			record.Name, record.Code, record.Advice, record.Score,
			record.Trend, record.Summary)
	}

	b.WriteString("\nCover overall positioning, risks and suggested adjustments.")
	return b.String()
}
