// Package storage builds sharing keys over the backend a storage kind names,
// configured from config.SharingConfig.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/on-the-ground/composable_go/config"
	"github.com/on-the-ground/composable_go/sharing"
	"github.com/on-the-ground/composable_go/sharing/blob"
	"github.com/on-the-ground/composable_go/sharing/kv"
)

var (
	ErrUnknownKind   = errors.New("unknown storage kind")
	ErrNoBucket      = errors.New("s3 storage needs a bucket")
	ErrNoCredentials = errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
)

type Kind string

const (
	Memory Kind = "memory"
	// MemDB and SQLite are app storage: every write goes straight through.
	MemDB  Kind = "memdb"
	SQLite Kind = "sqlite"
	// File and S3 store one JSON document per key, debounced.
	File Kind = "file"
	S3   Kind = "s3"
)

var Kinds = []Kind{Memory, MemDB, SQLite, File, S3}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Key returns the key of name kept in kind, and the closer of the backend it
// opened. Close it after the registry holding the key is closed.
func Key[V any](cfg config.SharingConfig, kind Kind, name string) (sharing.Key[V], io.Closer, error) {
	switch kind {
	case Memory:
		return sharing.InMemory[V](name), nopCloser{}, nil

	case MemDB:
		db, err := kv.NewMemDB()
		if err != nil {
			return sharing.Key[V]{}, nil, err
		}
		return cachedKey[V](cfg, db, name)

	case SQLite:
		path := cfg.SQLitePath
		if path == "" {
			if err := os.MkdirAll(cfg.FileRoot, 0o755); err != nil {
				return sharing.Key[V]{}, nil, fmt.Errorf("sqlite storage: %w", err)
			}
			path = filepath.Join(cfg.FileRoot, "app.db")
		}
		db, err := kv.OpenSQLite(path)
		if err != nil {
			return sharing.Key[V]{}, nil, err
		}
		return cachedKey[V](cfg, db, name)

	case File:
		fs, err := blob.NewFileSystem(cfg.FileRoot)
		if err != nil {
			return sharing.Key[V]{}, nil, err
		}
		return sharing.FileStorage[V](name+".json", fs, cfg.FileDebounce), nopCloser{}, nil

	case S3:
		if cfg.S3Bucket == "" {
			return sharing.Key[V]{}, nil, ErrNoBucket
		}
		backend := blob.NewS3(NewS3Client(cfg), cfg.S3Bucket)
		return sharing.FileStorage[V](name+".json", backend, cfg.FileDebounce), nopCloser{}, nil

	default:
		return sharing.Key[V]{}, nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func cachedKey[V any](cfg config.SharingConfig, backend kv.Backend, name string) (sharing.Key[V], io.Closer, error) {
	cached, err := kv.NewCached(backend, int(cfg.CacheSize))
	if err != nil {
		if closer, ok := backend.(io.Closer); ok {
			_ = closer.Close()
		}
		return sharing.Key[V]{}, nil, err
	}
	return sharing.AppStorage[V](name, cached), cached, nil
}

// NewS3Client builds a client for cfg's region and endpoint, authenticated
// from the standard AWS environment variables.
func NewS3Client(cfg config.SharingConfig) *s3.Client {
	opts := s3.Options{
		Region:      cfg.S3Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(environmentCredentials)),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func environmentCredentials(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, ErrNoCredentials
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}
