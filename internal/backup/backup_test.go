package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/pawlog/internal/database"
	"github.com/dukerupert/pawlog/internal/export"
	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

var testS3 = S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret", Region: "us-east-1"}

func setupManager(t *testing.T) (*Manager, *mockS3Client, *service.Service) {
	t.Helper()
	m, mock, svc, _ := setupManagerDB(t)
	return m, mock, svc
}

func setupManagerDB(t *testing.T) (*Manager, *mockS3Client, *service.Service, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := service.New(service.LocalBackend(db))
	m := NewManager(Config{S3: testS3}, svc, store.NewBackupStore(db), nil)
	mock := newMockS3()
	m.client = mock
	return m, mock, svc, db
}

func TestManagerStateLifecycle(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	m2 := NewManager(Config{S3: testS3}, nil, nil, nil)
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
	if m2.cfg.RetentionDays != 30 {
		t.Errorf("retention = %d, want 30", m2.cfg.RetentionDays)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(Config{S3: testS3}, nil, nil, cb)
	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestUpdateS3Config(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil)

	m.UpdateS3Config(testS3)
	if m.Status().State != StateIdle {
		t.Errorf("state after set = %q, want %q", m.Status().State, StateIdle)
	}

	m.UpdateS3Config(S3Config{Bucket: "test"})
	if m.Status().State != StateDisabled {
		t.Errorf("state after partial config = %q, want %q", m.Status().State, StateDisabled)
	}
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(Config{S3: testS3, Cron: "0 3 * * *"}, nil, nil, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.scheduler == nil || m.scheduler.Len() != 1 {
		t.Fatal("expected one scheduled job")
	}
	m.Stop()
	m.Stop()
}

func TestManagerStartInvalidCron(t *testing.T) {
	m := NewManager(Config{S3: testS3, Cron: "not a cron"}, nil, nil, nil)
	if err := m.Start(context.Background()); err == nil {
		m.Stop()
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{Cron: "0 3 * * *"}, nil, nil, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.scheduler != nil {
		t.Error("disabled manager should not schedule")
	}
	m.Stop()

	if _, err := m.RunNow(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Errorf("RunNow err = %v, want ErrDisabled", err)
	}
}

func TestRunNowUploadsSnapshot(t *testing.T) {
	m, mock, svc := setupManager(t)
	ctx := context.Background()

	if _, err := svc.AddCommand(ctx, &model.Command{Name: "Sit", AgeWeek: 8}); err != nil {
		t.Fatalf("add command: %v", err)
	}

	b, err := m.RunNow(ctx)
	if err != nil {
		t.Fatalf("run now: %v", err)
	}
	if b.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", b.Status)
	}
	if !strings.HasPrefix(b.ObjectKey, "snapshots/") || !strings.HasSuffix(b.ObjectKey, ".json") {
		t.Errorf("object key = %q", b.ObjectKey)
	}
	if b.Records != 2 {
		t.Errorf("records = %d, want 2 (potty + Sit)", b.Records)
	}
	data, ok := mock.objects[b.ObjectKey]
	if !ok {
		t.Fatal("snapshot not uploaded")
	}
	if int64(len(data)) != b.SizeBytes {
		t.Errorf("size = %d, uploaded %d bytes", b.SizeBytes, len(data))
	}
	if m.Status().State != StateIdle || m.Status().LastBackup == nil {
		t.Errorf("status after run = %+v", m.Status())
	}
}

func TestRunNowUploadFailure(t *testing.T) {
	m, mock, _ := setupManager(t)
	ctx := context.Background()
	mock.putErr = errors.New("bucket gone")

	if _, err := m.RunNow(ctx); err == nil {
		t.Fatal("expected upload error")
	}
	if m.Status().State != StateError {
		t.Errorf("state = %q, want %q", m.Status().State, StateError)
	}

	list, err := m.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.BackupStatusFailed {
		t.Fatalf("backups = %+v, want one failed", list)
	}
	if list[0].ErrorMessage != "bucket gone" {
		t.Errorf("error message = %q", list[0].ErrorMessage)
	}

	if _, _, err := m.Download(ctx, list[0].ID); err == nil {
		t.Error("download of failed backup should error")
	}
}

func TestRestore(t *testing.T) {
	m, _, svc := setupManager(t)
	ctx := context.Background()

	sit, err := svc.AddCommand(ctx, &model.Command{Name: "Sit", AgeWeek: 8})
	if err != nil {
		t.Fatalf("add command: %v", err)
	}
	if _, err := svc.AddPracticeLog(ctx, &model.PracticeLog{CommandID: sit.ID, Date: "2025-03-01", Success: true}); err != nil {
		t.Fatalf("add practice log: %v", err)
	}

	b, err := m.RunNow(ctx)
	if err != nil {
		t.Fatalf("run now: %v", err)
	}

	if _, err := svc.AddCommand(ctx, &model.Command{Name: "Down", AgeWeek: 9}); err != nil {
		t.Fatalf("add command: %v", err)
	}

	written, err := m.Restore(ctx, b.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if written[model.CollectionPracticeLogs] != 1 {
		t.Errorf("practice logs restored = %d, want 1", written[model.CollectionPracticeLogs])
	}

	cmds, err := svc.ListCommands(ctx)
	if err != nil {
		t.Fatalf("list commands: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("commands = %d, want 2", len(cmds))
	}
	for _, c := range cmds {
		if c.Name == "Down" {
			t.Error("command added after the backup survived restore")
		}
		if c.Name == "Sit" && c.Progress != 100 {
			t.Errorf("Sit progress = %d, want 100", c.Progress)
		}
	}
}

func TestRestoreKeepsMigrationFlags(t *testing.T) {
	m, _, _, db := setupManagerDB(t)
	ctx := context.Background()
	settings := store.NewSettingsStore(db)

	b, err := m.RunNow(ctx)
	if err != nil {
		t.Fatalf("run now: %v", err)
	}
	for _, key := range []string{"migration_completed", "migration:weight"} {
		if err := settings.SetFlag(ctx, key); err != nil {
			t.Fatalf("set flag: %v", err)
		}
	}

	if _, err := m.Restore(ctx, b.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for _, key := range []string{"migration_completed", "migration:weight"} {
		if ok, err := settings.Flag(ctx, key); err != nil || !ok {
			t.Errorf("flag %s after restore = %v (err %v), want true", key, ok, err)
		}
	}
}

func TestRestoreBadSnapshotKeepsRecords(t *testing.T) {
	m, mock, svc := setupManager(t)
	ctx := context.Background()

	if _, err := svc.AddCommand(ctx, &model.Command{Name: "Sit", AgeWeek: 8}); err != nil {
		t.Fatalf("add command: %v", err)
	}
	if _, err := svc.Fears.Add(ctx, &model.FearLog{Trigger: "doorbell", Intensity: 2, Date: "2025-03-01"}); err != nil {
		t.Fatalf("add fear: %v", err)
	}
	b, err := m.RunNow(ctx)
	if err != nil {
		t.Fatalf("run now: %v", err)
	}

	// An older snapshot carrying a record that no longer validates.
	snap, err := export.ReadJSON(bytes.NewReader(mock.objects[b.ObjectKey]))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	snap.Fears = append(snap.Fears, model.FearLog{Trigger: "thunder", Intensity: 11, Date: "2025-03-02"})
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, snap); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	mock.objects[b.ObjectKey] = buf.Bytes()

	if _, err := svc.AddCommand(ctx, &model.Command{Name: "Down", AgeWeek: 9}); err != nil {
		t.Fatalf("add command: %v", err)
	}

	if _, err := m.Restore(ctx, b.ID); !model.IsWriteError(err) {
		t.Fatalf("err = %v, want WriteError", err)
	}

	cmds, err := svc.ListCommands(ctx)
	if err != nil {
		t.Fatalf("list commands: %v", err)
	}
	names := map[string]bool{}
	for _, c := range cmds {
		names[c.Name] = true
	}
	if len(cmds) != 3 || !names["Sit"] || !names["Down"] {
		t.Errorf("commands after failed restore = %v, want potty, Sit and Down", names)
	}
	fears, err := svc.Fears.List(ctx)
	if err != nil {
		t.Fatalf("list fears: %v", err)
	}
	if len(fears) != 1 || fears[0].Trigger != "doorbell" {
		t.Errorf("fears after failed restore = %+v", fears)
	}
}

func TestRestoreMissing(t *testing.T) {
	m, _, _ := setupManager(t)
	_, err := m.Restore(context.Background(), 99)
	var nf *model.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("err = %v, want NotFoundError", err)
	}
}

func TestCleanup(t *testing.T) {
	m, mock, _ := setupManager(t)
	ctx := context.Background()

	b, err := m.RunNow(ctx)
	if err != nil {
		t.Fatalf("run now: %v", err)
	}

	if err := m.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, ok := mock.objects[b.ObjectKey]; !ok {
		t.Fatal("fresh snapshot removed")
	}

	m.now = func() time.Time { return time.Now().UTC().AddDate(0, 0, 31) }
	if err := m.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if mock.len() != 0 {
		t.Errorf("objects = %d, want 0 after retention expired", mock.len())
	}
	list, err := m.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("backup rows = %d, want 0", len(list))
	}
}
