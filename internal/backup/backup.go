// Package backup uploads encrypted export documents to S3-compatible storage
// and restores them into the shopping store.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/compras/internal/exchange"
	"github.com/dukerupert/compras/internal/model"
	"github.com/dukerupert/compras/internal/shopping"
	"github.com/dukerupert/compras/internal/store"
	"github.com/google/uuid"
)

const objectPrefix = "compras/"

// ErrNotFound is returned when a backup record does not exist.
var ErrNotFound = errors.New("backup not found")

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
	ScheduleHour  int // UTC hour of the daily backup
	RetentionDays int
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager manages encrypted backups of the shopping state.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback
	logger   *slog.Logger

	shopping    *shopping.Store
	backupStore *store.BackupStore
	client      s3Client

	// passphrase from the last manual run, kept in memory for scheduled runs
	cachedPassphrase string

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a new backup manager. It is disabled unless the S3
// bucket and credentials are configured.
func NewManager(cfg Config, st *shopping.Store, bs *store.BackupStore, callback StatusCallback, logger *slog.Logger) *Manager {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	m := &Manager{
		cfg:         cfg,
		shopping:    st,
		backupStore: bs,
		callback:    callback,
		logger:      logger,
		status:      Status{State: StateDisabled},
	}

	if cfg.S3.complete() {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether storage is configured.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the scheduled backup loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.done != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.checkSchedule(ctx, now.UTC())
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
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

// UpdateS3Config swaps the storage configuration at runtime. An incomplete
// config disables the manager.
func (m *Manager) UpdateS3Config(cfg S3Config) {
	m.mu.Lock()
	m.cfg.S3 = cfg
	var next State
	if cfg.complete() {
		m.client = newS3Client(cfg)
		next = StateIdle
	} else {
		m.client = nil
		next = StateDisabled
	}
	m.mu.Unlock()

	m.setStatus(Status{State: next})
}

// HasCachedPassphrase reports whether scheduled backups can run.
func (m *Manager) HasCachedPassphrase() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cachedPassphrase != ""
}

func (m *Manager) checkSchedule(ctx context.Context, now time.Time) {
	if now.Hour() != m.cfg.ScheduleHour || now.Minute() != 0 {
		return
	}

	m.mu.RLock()
	passphrase := m.cachedPassphrase
	m.mu.RUnlock()

	if passphrase == "" {
		m.logger.Info("skipping scheduled backup, no cached passphrase")
		return
	}

	if _, err := m.runBackup(ctx, passphrase, now); err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
	}

	if err := m.Cleanup(ctx, m.cfg.RetentionDays); err != nil {
		m.logger.Error("backup cleanup failed", "error", err)
	}
}

// RunNow backs up the current state immediately. The passphrase is cached in
// memory for later scheduled backups.
func (m *Manager) RunNow(ctx context.Context, passphrase string) (*model.Backup, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, fmt.Errorf("passphrase is required")
	}

	m.mu.Lock()
	m.cachedPassphrase = passphrase
	m.mu.Unlock()

	return m.runBackup(ctx, passphrase, time.Now().UTC())
}

func (m *Manager) runBackup(ctx context.Context, passphrase string, now time.Time) (*model.Backup, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, fmt.Errorf("backup not configured: S3 credentials missing")
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	filename := fmt.Sprintf("compras-organizadas-backup-%s.json.enc", now.Format("2006-01-02T150405Z"))
	key := objectPrefix + uuid.NewString()[:8] + "-" + filename

	record, err := m.backupStore.Create(filename, key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	fail := func(err error) {
		m.backupStore.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error())
		m.setStatus(Status{State: StateError, Error: err.Error()})
	}

	doc, err := exchange.Encode(exchange.Export(m.shopping.State(), now))
	if err != nil {
		fail(err)
		return nil, fmt.Errorf("export: %w", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		fail(err)
		return nil, err
	}
	sealed, err := Seal(doc, passphrase, salt)
	if err != nil {
		fail(err)
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	m.backupStore.UpdateStatus(record.ID, model.BackupStatusUploading, "")

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		fail(err)
		return nil, fmt.Errorf("upload to s3: %w", err)
	}

	size := int64(len(sealed))
	if err := m.backupStore.UpdateCompleted(record.ID, size); err != nil {
		m.logger.Error("mark backup completed", "id", record.ID, "error", err)
	}

	finished := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &finished})
	m.logger.Info("backup uploaded", "id", record.ID, "key", key, "bytes", size)

	record.Status = model.BackupStatusCompleted
	record.SizeBytes = size
	record.CompletedAt = &finished
	return record, nil
}

// Restore downloads a backup, decrypts it and loads it into the store,
// replacing the current state.
func (m *Manager) Restore(ctx context.Context, backupID int64, passphrase string) error {
	data, err := m.Download(ctx, backupID)
	if err != nil {
		return err
	}

	plaintext, err := Open(data, passphrase)
	if err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}

	p, err := exchange.Decode(plaintext)
	if err != nil {
		return fmt.Errorf("import backup: %w", err)
	}

	m.shopping.LoadData(p)
	m.logger.Info("backup restored", "id", backupID)
	return nil
}

// Download fetches the encrypted bytes of a backup.
func (m *Manager) Download(ctx context.Context, backupID int64) ([]byte, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, fmt.Errorf("backup not configured")
	}

	record, err := m.backupStore.GetByID(backupID)
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return nil, ErrNotFound
	}
	if !record.Status.Restorable() {
		return nil, fmt.Errorf("backup %d is %s: %w", backupID, record.Status, ErrNotFound)
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read backup body: %w", err)
	}
	return data, nil
}

// List returns the most recent backup records.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.backupStore.List(limit)
}

// Cleanup deletes backups older than the retention period.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	before := time.Now().UTC().AddDate(0, 0, -retentionDays)
	keys, err := m.backupStore.DeleteOlderThan(before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete backup object", "key", key, "error", err)
		}
	}

	return nil
}
