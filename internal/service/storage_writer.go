package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sshcollectorpro/configparser/internal/config"
	"github.com/sshcollectorpro/configparser/pkg/logger"
)

// StoredObject 已保存报表的信息
type StoredObject struct {
	URI         string `json:"uri"`
	Size        int64  `json:"size"`
	Checksum    string `json:"checksum"`
	ContentType string `json:"content_type"`
}

// StorageMeta 报表归档元数据
type StorageMeta struct {
	Hostname string
	// DateTime 归档时间戳，格式 YYYYMMDD_HHMMSS
	DateTime string
	RunID    string
}

// ReportStore 报表写入本地后的归档
type ReportStore interface {
	Store(ctx context.Context, meta StorageMeta, localPath string) (StoredObject, error)
}

// NewReportStore 根据 storage.backend 创建归档器
// minio 后端失败时回退到本地并记录预警
func NewReportStore(cfg *config.Config) ReportStore {
	local := &LocalReportStore{}
	if cfg == nil || cfg.Storage.Backend != "minio" {
		return local
	}
	return &DelegatingReportStore{local: local, minio: initMinioStore(cfg)}
}

// DelegatingReportStore 先尝试 MinIO，失败回退本地
type DelegatingReportStore struct {
	local *LocalReportStore
	minio *MinioReportStore
}

func (s *DelegatingReportStore) Store(ctx context.Context, meta StorageMeta, localPath string) (StoredObject, error) {
	if s.minio == nil {
		logger.Warn("MinIO backend selected but client not initialized; keeping local report only")
		return s.local.Store(ctx, meta, localPath)
	}
	obj, err := s.minio.Store(ctx, meta, localPath)
	if err != nil {
		logger.WithField("error", err).Warn("MinIO upload failed; keeping local report only")
		return s.local.Store(ctx, meta, localPath)
	}
	return obj, nil
}

// LocalReportStore 报表已在本地，仅计算校验信息
type LocalReportStore struct{}

func (s *LocalReportStore) Store(_ context.Context, _ StorageMeta, localPath string) (StoredObject, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to read report: %w", err)
	}
	abs, err := filepath.Abs(localPath)
	if err != nil {
		abs = localPath
	}
	return StoredObject{
		URI:         "file://" + filepath.ToSlash(abs),
		Size:        int64(len(data)),
		Checksum:    checksum(data),
		ContentType: contentTypeFor(localPath),
	}, nil
}

// MinioReportStore 上传报表到 MinIO
type MinioReportStore struct {
	cfg           *config.Config
	client        *minio.Client
	endpoint      string
	bucketEnsured bool
}

// initMinioStore 初始化 MinIO 客户端，配置不完整时返回 nil
func initMinioStore(cfg *config.Config) *MinioReportStore {
	endpoint := cfg.GetMinioEndpoint()
	if endpoint == "" {
		logger.Warn("MinIO configuration incomplete; host/port missing")
		return nil
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.Storage.Minio.AccessKey, cfg.Storage.Minio.SecretKey, ""),
		Secure:    cfg.Storage.Minio.Secure,
		Transport: transport,
	})
	if err != nil {
		logger.WithField("error", err).Error("MinIO client initialization failed")
		return nil
	}
	return &MinioReportStore{cfg: cfg, client: client, endpoint: endpoint}
}

func (s *MinioReportStore) Store(ctx context.Context, meta StorageMeta, localPath string) (StoredObject, error) {
	bucket := strings.TrimSpace(s.cfg.Storage.Minio.Bucket)
	if bucket == "" {
		return StoredObject{}, fmt.Errorf("minio bucket not configured")
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to read report: %w", err)
	}

	if !s.bucketEnsured {
		if err := s.ensureBucket(ctx, bucket); err != nil {
			return StoredObject{}, fmt.Errorf("minio ensure bucket failed: %w", err)
		}
		s.bucketEnsured = true
	}

	objectName := ObjectName(s.cfg.Storage.Prefix, meta, filepath.Base(localPath))
	ct := contentTypeFor(localPath)

	// 有限次重试，每次尝试单独限时
	var lastErr error
	for attempt, backoff := range []time.Duration{0, 2 * time.Second, 4 * time.Second} {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return StoredObject{}, ctx.Err()
			case <-time.After(backoff):
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := s.client.PutObject(attemptCtx, bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: ct})
		cancel()
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
	}
	if lastErr != nil {
		return StoredObject{}, fmt.Errorf("minio put object failed after retries: %w", lastErr)
	}

	return StoredObject{
		URI:         "minio://" + path.Join(bucket, objectName),
		Size:        int64(len(data)),
		Checksum:    checksum(data),
		ContentType: ct,
	}, nil
}

// ensureBucket 检查 bucket，不存在则创建
func (s *MinioReportStore) ensureBucket(parent context.Context, bucket string) error {
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

// ObjectName 对象路径：<prefix>/<hostname>/<YYYYMMDD_HHMMSS>/<file>
func ObjectName(prefix string, meta StorageMeta, filename string) string {
	parts := []string{}
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		parts = append(parts, p)
	}
	host := unsafeNameRe.ReplaceAllString(strings.TrimSpace(meta.Hostname), "_")
	if host == "" {
		host = "unknown"
	}
	parts = append(parts, host)
	dt := strings.TrimSpace(meta.DateTime)
	if dt == "" {
		dt = time.Now().Format("20060102_150405")
	}
	parts = append(parts, dt, filename)
	return path.Join(parts...)
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

func contentTypeFor(p string) string {
	if strings.EqualFold(filepath.Ext(p), ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
