// Package service wires ingestion, the active dataset and upload jobs
// together behind the operations the HTTP API and CLI need.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/plantmetrics/internal/adapters/ingest"
	"github.com/okian/plantmetrics/internal/adapters/mq/queue"
	"github.com/okian/plantmetrics/internal/adapters/mq/worker"
	"github.com/okian/plantmetrics/internal/adapters/repository"
	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/internal/domain/dedupe"
	"github.com/okian/plantmetrics/internal/domain/emissions"
	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/parser"
	"github.com/okian/plantmetrics/internal/domain/processor"
	"github.com/okian/plantmetrics/internal/domain/types"
	"github.com/okian/plantmetrics/internal/domain/units"
	"github.com/okian/plantmetrics/pkg/logger"
	"github.com/okian/plantmetrics/pkg/metrics"
)

// Service owns the active dataset and the upload pipeline.
type Service struct {
	mu sync.RWMutex

	decoder   *ingest.Decoder
	processor *processor.Processor
	store     repository.DatasetStore
	jobs      repository.JobRepository
	inflight  dedupe.Tracker
	admitMu   sync.Mutex // a visible claim always has its job recorded
	queue     *queue.InMemoryQueue
	pool      *worker.Pool

	workerCount    int
	queueSize      int
	dedupeSize     int
	jobRetention   int
	maxUploadBytes int64
	energyFactors  units.Factors
	emitFactors    emissions.Factors
	defaultUnit    units.EnergyUnit

	seq     atomic.Uint64
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the number of uploads waiting for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the in-flight checksum tracker.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithJobRetention sets how many jobs stay queryable.
func WithJobRetention(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.jobRetention = n
		}
	}
}

// WithMaxUploadBytes rejects larger payloads. n <= 0 disables the limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) { s.maxUploadBytes = n }
}

// WithEnergyFactors overrides the energy conversion table.
func WithEnergyFactors(f units.Factors) Option {
	return func(s *Service) { s.energyFactors = f }
}

// WithEmissionFactors overrides the emission factor table.
func WithEmissionFactors(f emissions.Factors) Option {
	return func(s *Service) { s.emitFactors = f }
}

// WithDefaultUnit sets the display unit used when a caller names none.
func WithDefaultUnit(u units.EnergyUnit) Option {
	return func(s *Service) {
		if u != "" {
			s.defaultUnit = u
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. The dataset starts empty; uploads are accepted
// once Start has been called.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    2,
		queueSize:      64,
		dedupeSize:     1024,
		jobRetention:   256,
		maxUploadBytes: 32 << 20,
		energyFactors:  units.DefaultFactors(),
		emitFactors:    emissions.DefaultFactors(),
		defaultUnit:    units.MMBTU,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.decoder = ingest.NewDecoder(ingest.WithMaxBytes(s.maxUploadBytes))
	s.processor = processor.New(
		processor.WithEnergyFactors(s.energyFactors),
		processor.WithEmissionFactors(s.emitFactors),
	)
	s.store = repository.NewSnapshotStore()
	s.jobs = repository.NewJobStore(repository.WithRetention(s.jobRetention))
	s.inflight = dedupe.NewTracker(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start launches the worker pool. Workers outlive ctx; use Stop to end them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting plantmetrics service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.queue, s, s.workerCount)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "plantmetrics service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int64("maxUploadBytes", s.maxUploadBytes),
	)
	return nil
}

// Stop stops accepting uploads and waits for queued ones to finish.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping plantmetrics service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false

	s.logger.Info(ctx, "plantmetrics service stopped")
	return err
}

// Submit registers an upload and queues it for ingestion. When identical
// bytes are already being ingested the existing job is returned with
// duplicate set.
func (s *Service) Submit(ctx context.Context, name string, data []byte) (model.Job, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Job{}, false, ErrNotStarted
	}

	job, dup, err := s.admit(ctx, name, data)
	if err != nil || dup {
		return job, dup, err
	}

	err = s.queue.Enqueue(ctx, uploadFor(job, data))
	if err == nil {
		return job, false, nil
	}

	s.inflight.Release(ctx, job.Checksum, job.ID)
	if errors.Is(err, queue.ErrFull) {
		err = fmt.Errorf("%w: %w", ErrBusy, err)
	}
	failed, _ := s.jobs.Update(ctx, job.ID, func(j *model.Job) {
		j.Status = model.JobFailed
		j.Error = err.Error()
		j.FinishedAt = time.Now()
	})
	metrics.RecordUploadFailed("enqueue")
	s.logger.Warn(ctx, "upload not queued",
		logger.String("job", job.ID),
		logger.String("name", name),
		logger.Error(err),
	)
	return failed, false, err
}

// Ingest runs an upload to completion on the calling goroutine and returns
// the finished job. A decoding failure is reported through the job, not err.
func (s *Service) Ingest(ctx context.Context, name string, data []byte) (model.Job, bool, error) {
	job, dup, err := s.admit(ctx, name, data)
	if err != nil || dup {
		return job, dup, err
	}
	_ = s.Handle(ctx, uploadFor(job, data))
	done, err := s.jobs.Get(ctx, job.ID)
	return done, false, err
}

// admit checks the payload, claims its checksum and records a pending job.
func (s *Service) admit(ctx context.Context, name string, data []byte) (model.Job, bool, error) {
	if len(data) == 0 {
		return model.Job{}, false, ErrEmptyPayload
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return model.Job{}, false, fmt.Errorf("%w: %d > %d bytes", ingest.ErrTooLarge, len(data), s.maxUploadBytes)
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])
	id := uuid.NewString()

	s.admitMu.Lock()
	defer s.admitMu.Unlock()

	if existing, claimed := s.inflight.Claim(ctx, checksum, id); !claimed {
		prev, err := s.jobs.Get(ctx, existing)
		if err == nil && !prev.Status.Done() {
			metrics.RecordUploadDuplicate()
			s.logger.Debug(ctx, "duplicate upload joined in-flight job",
				logger.String("job", existing),
				logger.String("name", name),
			)
			return prev, true, nil
		}
		// The owning job finished, or was evicted after finishing, without
		// its claim being dropped.
		if !s.inflight.Replace(ctx, checksum, existing, id) {
			return model.Job{}, false, fmt.Errorf("claim %s: %w", checksum, ErrBusy)
		}
	}

	job := model.Job{
		ID:          id,
		Seq:         s.seq.Add(1),
		Name:        name,
		Checksum:    checksum,
		Size:        len(data),
		Status:      model.JobPending,
		SubmittedAt: time.Now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.inflight.Release(ctx, checksum, id)
		return model.Job{}, false, fmt.Errorf("create job: %w", err)
	}
	metrics.RecordUploadReceived(len(data))
	metrics.UpdateJobsRetained(s.jobs.Len(ctx))
	return job, false, nil
}

func uploadFor(j model.Job, data []byte) model.Upload { //nolint:gocritic // hugeParam: Job copied once per upload
	return model.Upload{
		JobID:       j.ID,
		Seq:         j.Seq,
		Name:        j.Name,
		Data:        data,
		Checksum:    j.Checksum,
		SubmittedAt: j.SubmittedAt,
	}
}

// Handle ingests one upload. It implements worker.Handler.
func (s *Service) Handle(ctx context.Context, u model.Upload) error { //nolint:gocritic // hugeParam: Upload passed by value for channel semantics
	defer s.inflight.Release(ctx, u.Checksum, u.JobID)

	started := time.Now()
	if _, err := s.jobs.Update(ctx, u.JobID, func(j *model.Job) {
		j.Status = model.JobRunning
		j.StartedAt = started
	}); err != nil {
		s.logger.Warn(ctx, "job evicted before ingestion", logger.String("job", u.JobID))
	}

	report, err := s.build(ctx, u)
	finished := time.Now()
	if err != nil {
		_, _ = s.jobs.Update(ctx, u.JobID, func(j *model.Job) {
			j.Status = model.JobFailed
			j.Error = err.Error()
			j.FinishedAt = finished
		})
		metrics.RecordUploadFailed(failureReason(err))
		metrics.RecordErrorByComponent("ingest", failureReason(err))
		s.logger.Warn(ctx, "upload rejected",
			logger.String("job", u.JobID),
			logger.String("name", u.Name),
			logger.Error(err),
		)
		return err
	}

	report.Duration = finished.Sub(started)
	_, _ = s.jobs.Update(ctx, u.JobID, func(j *model.Job) {
		j.Status = model.JobSucceeded
		j.FinishedAt = finished
		j.Report = &report
	})
	metrics.RecordUploadSucceeded()
	metrics.RecordIngestDuration(report.Format, float64(report.Duration.Microseconds())/1000)
	s.logger.Info(ctx, "upload ingested",
		logger.String("job", u.JobID),
		logger.String("name", u.Name),
		logger.String("dataset", report.DatasetID),
		logger.Int("records", report.Records),
		logger.Int("skipped", report.RowsSkipped),
		logger.Bool("swapped", report.Swapped),
		logger.Duration("took", report.Duration),
	)
	return nil
}

// build turns an upload into a dataset and offers it to the store.
func (s *Service) build(ctx context.Context, u model.Upload) (model.IngestReport, error) { //nolint:gocritic // hugeParam: Upload passed by value for channel semantics
	table, err := s.decoder.Decode(ctx, u.Name, u.Data)
	if err != nil {
		return model.IngestReport{}, err
	}

	raws := make([]model.RawRecord, len(table.Rows))
	for i, row := range table.Rows {
		raws[i] = parser.Parse(row)
	}
	ds := dataset.New(s.processor.ProcessAll(raws),
		dataset.WithID(uuid.NewString()),
		dataset.WithSource(u.Name),
		dataset.WithCreatedAt(time.Now()),
	)
	if err := ctx.Err(); err != nil {
		return model.IngestReport{}, err
	}
	swapped := s.store.SwapIfNewer(ds, u.Seq)

	metrics.RecordRows(len(table.Rows), table.Skipped)
	metrics.RecordDuplicateRecords(ds.Duplicates())

	sum := ds.Summary()
	report := model.IngestReport{
		DatasetID:         sum.ID,
		Source:            sum.Source,
		Format:            string(table.Format),
		RowsRead:          table.RowsRead,
		RowsSkipped:       table.Skipped,
		Records:           sum.Records,
		DuplicatesDropped: sum.DuplicatesDropped,
		Dates:             sum.Dates,
		Plants:            sum.Plants,
		Header:            table.Report,
		Swapped:           swapped,
	}
	report.Warnings = warnings(report, ds)
	return report, nil
}

func warnings(r model.IngestReport, ds *dataset.Dataset) []string { //nolint:gocritic // hugeParam: report built once per upload
	var out []string
	if len(r.Header.Missing) > 0 {
		out = append(out, "missing columns read as 0: "+strings.Join(r.Header.Missing, ", "))
	}
	if len(r.Header.Unknown) > 0 {
		out = append(out, "ignored columns: "+strings.Join(r.Header.Unknown, ", "))
	}
	if r.RowsSkipped > 0 {
		out = append(out, fmt.Sprintf("%d rows skipped", r.RowsSkipped))
	}
	if r.DuplicatesDropped > 0 {
		out = append(out, fmt.Sprintf("%d duplicate plant/date rows replaced", r.DuplicatesDropped))
	}
	if n := len(ds.RecordsOn(model.UnknownDate)); n > 0 {
		out = append(out, fmt.Sprintf("%d rows without a valid date", n))
	}
	if !r.Swapped {
		out = append(out, "a newer dataset is already active")
	}
	return out
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ingest.ErrCorrupt):
		return "corrupt"
	case errors.Is(err, ingest.ErrNoHeader):
		return "no_header"
	case errors.Is(err, ingest.ErrUnrecognizedHeader):
		return "unrecognized_header"
	case errors.Is(err, ingest.ErrTooLarge):
		return "too_large"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// Job returns an upload job by ID.
func (s *Service) Job(ctx context.Context, id string) (model.Job, error) {
	return s.jobs.Get(ctx, id)
}

// Jobs returns up to limit jobs, newest first.
func (s *Service) Jobs(ctx context.Context, limit int) []model.Job {
	return s.jobs.List(ctx, limit)
}

// Current returns the active snapshot.
func (s *Service) Current() *repository.Snapshot {
	return s.store.Current()
}

// DefaultUnit is the display unit used when a request names none.
func (s *Service) DefaultUnit() units.EnergyUnit { return s.defaultUnit }

func (s *Service) dataset(query string) *dataset.Dataset {
	metrics.RecordDatasetQuery(query)
	return s.store.Current().Dataset
}

// Summary describes the active dataset.
func (s *Service) Summary() dataset.Summary {
	return s.dataset("summary").Summary()
}

// Dates lists the active dataset's dates in chronological order.
func (s *Service) Dates() []string {
	return s.dataset("dates").Dates()
}

// Plants lists the plants reporting on date.
func (s *Service) Plants(date string) []string {
	return s.dataset("plants").Plants(date)
}

// Records returns the records on date, or every record when date is empty.
func (s *Service) Records(date string, u units.EnergyUnit) types.RecordsView {
	ds := s.dataset("records")
	if date == "" {
		return types.NewRecordsView("", ds.Records(), u)
	}
	return types.NewRecordsView(date, ds.RecordsOn(date), u)
}

// Lookup returns the record for (date, plant) in u, or a placeholder.
func (s *Service) Lookup(date, plant string, u units.EnergyUnit) model.ProcessedRecord {
	return s.dataset("record").Lookup(date, plant).InUnit(u)
}

// Range returns the extremes of kpi on date.
func (s *Service) Range(date string, kpi dataset.KPI) (types.RangeView, error) {
	r, ok := s.dataset("range").Range(date, kpi)
	if !ok {
		return types.RangeView{}, fmt.Errorf("%w: %s on %s", ErrNoData, kpi, date)
	}
	return types.NewRangeView(r), nil
}

// Peers returns the record for (date, plant) with the other plants on date.
func (s *Service) Peers(date, plant string, u units.EnergyUnit) types.PeersView {
	return types.NewPeersView(date, plant, s.dataset("peers").Peers(date, plant), u)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	snap := s.store.Current()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"inFlight":       s.inflight.Size(),
		"jobsRetained":   s.jobs.Len(ctx),
		"datasetVersion": snap.Version,
		"dataset":        snap.Dataset.Summary(),
	}
	if !snap.SwappedAt.IsZero() {
		stats["lastSwap"] = snap.SwappedAt
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}
