package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/dukerupert/pawlog/internal/export"
	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/store"
)

// ErrDisabled is returned when no S3 credentials are configured.
var ErrDisabled = errors.New("backup not configured: S3 credentials missing")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration.
type Config struct {
	S3            S3Config
	Cron          string
	RetentionDays int
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"lastBackup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"inProgress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager uploads JSON snapshots of every collection to S3-compatible storage.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback

	svc     *service.Service
	backups *store.BackupStore
	client  s3Client

	scheduler *gocron.Scheduler
	now       func() time.Time
}

func NewManager(cfg Config, svc *service.Service, bs *store.BackupStore, callback StatusCallback) *Manager {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	m := &Manager{
		cfg:      cfg,
		svc:      svc,
		backups:  bs,
		callback: callback,
		status:   Status{State: StateDisabled},
		now:      func() time.Time { return time.Now().UTC() },
	}
	if cfg.S3.complete() {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// UpdateS3Config hot-reloads the S3 configuration.
func (m *Manager) UpdateS3Config(s3cfg S3Config) {
	m.mu.Lock()
	m.cfg.S3 = s3cfg
	if s3cfg.complete() {
		m.client = newS3Client(s3cfg)
		m.status.State = StateIdle
	} else {
		m.client = nil
		m.status.State = StateDisabled
	}
	status := m.status
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(status)
	}
}

// Start schedules recurring backups on the configured cron expression.
// It is a no-op when the manager is disabled or no expression is set.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status.State == StateDisabled || m.cfg.Cron == "" || m.scheduler != nil {
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Cron(m.cfg.Cron).Do(func() {
		m.runScheduled(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule backups %q: %w", m.cfg.Cron, err)
	}
	s.StartAsync()
	m.scheduler = s
	slog.Info("backup scheduler started", "cron", m.cfg.Cron, "bucket", m.cfg.S3.Bucket)
	return nil
}

// Stop halts the scheduler. Safe to call more than once.
func (m *Manager) Stop() {
	m.mu.Lock()
	s := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

func (m *Manager) runScheduled(ctx context.Context) {
	if _, err := m.RunNow(ctx); err != nil {
		slog.Error("scheduled backup failed", "error", err)
	}
	if err := m.Cleanup(ctx); err != nil {
		slog.Error("backup cleanup failed", "error", err)
	}
}

func (m *Manager) clientAndBucket() (s3Client, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client, m.cfg.S3.Bucket
}

// RunNow uploads a snapshot immediately and returns its tracking record.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	client, bucket := m.clientAndBucket()
	if client == nil {
		return nil, ErrDisabled
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	key := fmt.Sprintf("snapshots/%s-%s.json", m.now().Format("20060102T150405Z"), uuid.NewString())
	record, err := m.backups.Create(ctx, key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	fail := func(step string, err error) (*model.Backup, error) {
		if uerr := m.backups.UpdateFailed(ctx, record.ID, err.Error()); uerr != nil {
			slog.Error("mark backup failed", "id", record.ID, "error", uerr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	snap, err := export.Collect(ctx, m.svc)
	if err != nil {
		return fail("collect snapshot", err)
	}
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, snap); err != nil {
		return fail("encode snapshot", err)
	}
	size := int64(buf.Len())

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	if err := m.backups.UpdateCompleted(ctx, record.ID, size, snap.Records()); err != nil {
		return nil, fmt.Errorf("mark backup completed: %w", err)
	}

	now := m.now()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})
	slog.Info("backup uploaded", "id", record.ID, "key", key, "bytes", size, "records", snap.Records())

	return m.backups.GetByID(ctx, record.ID)
}

func (m *Manager) List(ctx context.Context, limit int) ([]model.Backup, error) {
	return m.backups.List(ctx, limit)
}

// Download streams a stored snapshot from S3.
func (m *Manager) Download(ctx context.Context, backupID int64) (io.ReadCloser, int64, error) {
	client, bucket := m.clientAndBucket()
	if client == nil {
		return nil, 0, ErrDisabled
	}

	record, err := m.backups.GetByID(ctx, backupID)
	if err != nil {
		return nil, 0, fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		return nil, 0, &model.NotFoundError{Collection: "backups", ID: backupID}
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download from s3: %w", err)
	}
	return result.Body, record.SizeBytes, nil
}

// Restore replaces every collection with the contents of a stored snapshot.
// The snapshot is fully decoded before anything is cleared, and a snapshot
// that fails part way leaves the previous records in place.
func (m *Manager) Restore(ctx context.Context, backupID int64) (map[string]int, error) {
	body, _, err := m.Download(ctx, backupID)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	snap, err := export.ReadJSON(body)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	written, err := export.Replace(ctx, m.svc, snap)
	if err != nil {
		return nil, fmt.Errorf("restore backup %d: %w", backupID, err)
	}
	slog.Info("backup restored", "id", backupID, "records", snap.Records())
	return written, nil
}

// Cleanup deletes backups older than the retention period.
func (m *Manager) Cleanup(ctx context.Context) error {
	client, bucket := m.clientAndBucket()
	if client == nil {
		return nil
	}

	before := m.now().AddDate(0, 0, -m.cfg.RetentionDays)
	keys, err := m.backups.DeleteOlderThan(ctx, before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			slog.Warn("delete backup object", "key", key, "error", err)
		}
	}
	return nil
}
