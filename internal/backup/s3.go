// Package backup copies flat-file snapshots to an S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BruksfildServices01/barber-turnos/internal/config"
)

const (
	queueSize     = 32
	uploadTimeout = 30 * time.Second
)

// Uploader is the part of the S3 client the mirror uses.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type snapshot struct {
	name string
	data []byte
}

// S3Mirror uploads snapshots on a single worker. A full queue drops the
// snapshot; the next write of the same collection supersedes it anyway.
type S3Mirror struct {
	client Uploader
	bucket string
	prefix string

	queue chan snapshot
	done  chan struct{}
	once  sync.Once
}

func NewS3Mirror(client Uploader, bucket, prefix string) *S3Mirror {
	m := &S3Mirror{
		client: client,
		bucket: bucket,
		prefix: prefix,
		queue:  make(chan snapshot, queueSize),
		done:   make(chan struct{}),
	}

	go m.worker()
	return m
}

// FromConfig builds a mirror from the BACKUP_S3_* settings. It returns nil
// when no bucket is configured.
func FromConfig(cfg *config.Config) *S3Mirror {
	if cfg.BackupBucket == "" {
		return nil
	}

	awsCfg := aws.Config{
		Region: cfg.BackupRegion,
	}
	if cfg.AWSAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, "")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BackupEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BackupEndpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Mirror(client, cfg.BackupBucket, cfg.BackupPrefix)
}

func (m *S3Mirror) Enqueue(name string, data []byte) {
	select {
	case m.queue <- snapshot{name: name, data: data}:
	default:
		slog.Warn("backup queue full, dropping snapshot", "name", name)
	}
}

// Close stops accepting snapshots and waits for queued uploads.
func (m *S3Mirror) Close() {
	m.once.Do(func() {
		close(m.queue)
	})
	<-m.done
}

func (m *S3Mirror) worker() {
	defer close(m.done)

	for snap := range m.queue {
		m.upload(snap)
	}
}

func (m *S3Mirror) upload(snap snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	key := path.Join(m.prefix, snap.name)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(snap.data),
		ContentType: aws.String(contentType(snap.name)),
	})
	if err != nil {
		slog.Error("backup upload failed", "bucket", m.bucket, "key", key, "error", err)
		return
	}
	slog.Debug("backup uploaded", "bucket", m.bucket, "key", key, "bytes", len(snap.data))
}

func contentType(name string) string {
	if path.Ext(name) == ".json" {
		return "application/json"
	}
	return "application/octet-stream"
}
