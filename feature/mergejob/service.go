package mergejob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"arxml-merger/core/arxml"
	"arxml-merger/core/merge"
	"arxml-merger/core/storage"
	"arxml-merger/feature/mergejob/models"
	"arxml-merger/feature/report"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Session lifecycle states.
const (
	StatusCollecting = "collecting"
	StatusMerging    = "merging"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("mergejob: session not found")
	// ErrNoFiles is returned when a merge is started on an empty session.
	ErrNoFiles = errors.New("mergejob: no files uploaded")
	// ErrNotCollecting is returned when files are added after the merge started.
	ErrNotCollecting = errors.New("mergejob: session is no longer accepting files")
	// ErrNotCompleted is returned when output is requested before the merge finished.
	ErrNotCompleted = errors.New("mergejob: merge has not completed")
)

// Options carries the merge defaults a session starts from.
type Options struct {
	// Strategy is the default strategy when a request names none.
	Strategy merge.Strategy
	// Rules is the rule list used by the rule_based strategy.
	Rules []merge.Rule
	// ReferencePatterns overrides the scanned reference suffixes.
	ReferencePatterns []string
	// Hook is an optional validation hook run on merged output.
	Hook merge.ValidationHook
	// SessionTTL bounds how long an idle session is kept. Zero means one hour.
	SessionTTL time.Duration
}

func (o Options) ttl() time.Duration {
	if o.SessionTTL <= 0 {
		return time.Hour
	}
	return o.SessionTTL
}

// session is the in-memory state of one upload-merge-download cycle.
type session struct {
	id        string
	createdAt time.Time

	mu       sync.Mutex
	status   string
	progress int
	inputs   []merge.Input
	strategy merge.Strategy
	result   *merge.Result
	output   string
	errMsg   string
	report   *report.MergeReport
}

// StatusInfo is the externally visible snapshot of a session.
type StatusInfo struct {
	SessionID     string             `json:"session_id"`
	Status        string             `json:"status"`
	Progress      int                `json:"progress"`
	UploadedFiles int                `json:"uploaded_files"`
	Strategy      merge.Strategy     `json:"strategy,omitempty"`
	Summary       string             `json:"summary,omitempty"`
	Error         string             `json:"error_message,omitempty"`
	Diagnostics   []merge.Diagnostic `json:"warnings,omitempty"`
}

// Service manages merge sessions and runs merges in the background.
type Service struct {
	opts   Options
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB

	mu       sync.Mutex
	sessions map[string]*session

	reports singleflight.Group
}

// NewService creates the merge job service. client and db are optional; nil
// disables artifact archiving and job history respectively.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		opts:     opts,
		client:   client,
		bucket:   bucket,
		logger:   logger,
		db:       db,
		sessions: make(map[string]*session),
	}
}

// CreateSession registers a new empty session and returns its id.
func (s *Service) CreateSession() string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &session{
		id:        id,
		createdAt: time.Now(),
		status:    StatusCollecting,
	}
	s.mu.Unlock()

	s.logger.Info("Merge session created", zap.String("session_id", id))
	return id
}

func (s *Service) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// AddFile attaches one uploaded document to a collecting session and returns
// the new file count.
func (s *Service) AddFile(id, name, text string) (int, error) {
	sess, err := s.get(id)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.status != StatusCollecting {
		return 0, ErrNotCollecting
	}

	sess.inputs = append(sess.inputs, merge.Input{Name: name, Text: text})
	return len(sess.inputs), nil
}

// StartMerge begins the merge in the background. strategy and rules override
// the service defaults when non-zero.
func (s *Service) StartMerge(id string, strategy merge.Strategy, rules []merge.Rule) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.status != StatusCollecting {
		return ErrNotCollecting
	}
	if len(sess.inputs) == 0 {
		return ErrNoFiles
	}

	if strategy == "" {
		strategy = s.opts.Strategy
	}
	if strategy == "" {
		strategy = merge.StrategyConservative
	}
	if rules == nil {
		rules = s.opts.Rules
	}

	sess.status = StatusMerging
	sess.progress = 10
	sess.strategy = strategy

	// The session outlives the HTTP request that started it, so the merge
	// runs on a detached context.
	go s.runMerge(sess, strategy, rules)

	return nil
}

func (s *Service) runMerge(sess *session, strategy merge.Strategy, rules []merge.Rule) {
	log := s.logger.With(zap.String("session_id", sess.id))

	sess.mu.Lock()
	inputs := make([]merge.Input, len(sess.inputs))
	copy(inputs, sess.inputs)
	sess.progress = 20
	sess.mu.Unlock()

	result, err := merge.Merge(context.Background(), inputs, merge.Options{
		Strategy:          strategy,
		Rules:             rules,
		ReferencePatterns: s.opts.ReferencePatterns,
		Hook:              s.opts.Hook,
	})

	sess.mu.Lock()
	if err != nil {
		sess.status = StatusFailed
		sess.errMsg = err.Error()
		sess.progress = 100
		if result != nil {
			sess.result = result
		}
		sess.mu.Unlock()

		log.Error("Merge failed", zap.Error(err))
		s.recordJob(sess, strategy, result, err)
		return
	}

	sess.progress = 80
	sess.result = result
	sess.output = arxml.Serialize(result.Document)
	sess.status = StatusCompleted
	sess.progress = 100
	sess.mu.Unlock()

	log.Info("Merge completed",
		zap.Int("merged", result.MergedInputs),
		zap.Int("skipped", result.SkippedInputs),
		zap.Int("conflicts", len(result.Resolutions)),
		zap.Int("unresolved_refs", result.UnresolvedRefs))

	archive := s.archiveOutput(sess)
	s.recordJobWithArchive(sess, strategy, result, nil, archive)
}

// archiveOutput uploads the merged document to the artifact archive. Failures
// are logged, not fatal; the output stays downloadable from memory.
func (s *Service) archiveOutput(sess *session) string {
	if s.client == nil {
		return ""
	}

	sess.mu.Lock()
	output := sess.output
	sess.mu.Unlock()

	object := fmt.Sprintf("jobs/%s/merged.arxml", sess.id)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, object,
		bytes.NewReader([]byte(output)), int64(len(output)),
		minio.PutObjectOptions{ContentType: "application/xml"})
	if err != nil {
		s.logger.Warn("Failed to archive merged output",
			zap.String("session_id", sess.id), zap.Error(err))
		return ""
	}

	s.logger.Info("Merged output archived",
		zap.String("session_id", sess.id), zap.String("object", object))
	return object
}

func (s *Service) recordJob(sess *session, strategy merge.Strategy, result *merge.Result, runErr error) {
	s.recordJobWithArchive(sess, strategy, result, runErr, "")
}

// recordJobWithArchive persists the run outcome to the job history table.
func (s *Service) recordJobWithArchive(sess *session, strategy merge.Strategy, result *merge.Result, runErr error, archive string) {
	if s.db == nil {
		return
	}

	job := models.MergeJob{
		ID:            sess.id,
		Strategy:      string(strategy),
		Status:        StatusCompleted,
		ArchiveObject: archive,
		CreatedAt:     time.Now(),
	}
	if runErr != nil {
		job.Status = StatusFailed
		job.Error = runErr.Error()
	}
	if result != nil {
		job.InputFiles = result.MergedInputs
		job.SkippedFiles = result.SkippedInputs
		job.Conflicts = len(result.Resolutions)
		job.UnresolvedRefs = result.UnresolvedRefs
		job.Summary = result.Summary()
	}

	if err := s.db.Create(&job).Error; err != nil {
		s.logger.Warn("Failed to record merge job",
			zap.String("session_id", sess.id), zap.Error(err))
	}
}

// Status returns the externally visible snapshot of a session.
func (s *Service) Status(id string) (*StatusInfo, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	info := &StatusInfo{
		SessionID:     sess.id,
		Status:        sess.status,
		Progress:      sess.progress,
		UploadedFiles: len(sess.inputs),
		Strategy:      sess.strategy,
		Error:         sess.errMsg,
	}
	if sess.result != nil {
		info.Summary = sess.result.Summary()
		info.Diagnostics = sess.result.Diagnostics
	}
	return info, nil
}

// Output returns the serialized merged document of a completed session.
func (s *Service) Output(id string) (string, error) {
	sess, err := s.get(id)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.status != StatusCompleted {
		return "", ErrNotCompleted
	}
	return sess.output, nil
}

// Report builds the merge report for a completed session. Concurrent callers
// share one build via singleflight, and the result is cached on the session.
func (s *Service) Report(id string) (*report.MergeReport, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.status != StatusCompleted {
		sess.mu.Unlock()
		return nil, ErrNotCompleted
	}
	if sess.report != nil {
		rep := sess.report
		sess.mu.Unlock()
		return rep, nil
	}
	result := sess.result
	strategy := sess.strategy
	names := make([]string, len(sess.inputs))
	for i, in := range sess.inputs {
		names[i] = in.Name
	}
	sess.mu.Unlock()

	rep, err, _ := s.reports.Do(id, func() (any, error) {
		r := report.Build(result, names, "merged.arxml", strategy)

		sess.mu.Lock()
		sess.report = r
		sess.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return rep.(*report.MergeReport), nil
}

// RemoveSession drops a session and its in-memory artifacts.
func (s *Service) RemoveSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.Info("Merge session removed", zap.String("session_id", id))
	return nil
}

// SweepExpired removes sessions older than the configured TTL and returns
// how many were dropped. Sessions still merging are spared.
func (s *Service) SweepExpired() int {
	cutoff := time.Now().Add(-s.opts.ttl())

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := sess.createdAt.Before(cutoff) && sess.status != StatusMerging
		sess.mu.Unlock()

		if expired {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Expired merge sessions removed", zap.Int("count", removed))
	}
	return removed
}

// StartJanitor sweeps expired sessions periodically until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepExpired()
			}
		}
	}()
}

// History returns the most recent persisted merge jobs, newest first.
func (s *Service) History(limit int) ([]models.MergeJob, error) {
	if s.db == nil {
		return nil, errors.New("mergejob: job history is not enabled")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var jobs []models.MergeJob
	err := s.db.Order("created_at DESC").Limit(limit).Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load job history: %w", err)
	}
	return jobs, nil
}
