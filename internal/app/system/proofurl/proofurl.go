// Package proofurl turns a stored payment-screenshot path into a URL an
// admin's browser can load.
//
// A blank path means no proof was submitted. That is reported as
// Proof{HasProof: false}, which is different from a resolution error.
package proofurl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gocache "github.com/patrickmn/go-cache"
)

// Backends accepted in Config.Backend.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Proof is the resolved payment evidence for one registration.
type Proof struct {
	HasProof bool   `json:"has_proof"`
	URL      string `json:"url,omitempty"`
}

// Resolver maps a stored object path to a fetchable URL.
type Resolver interface {
	URL(ctx context.Context, objectPath string) (string, error)
}

// Config selects the storage backend.
type Config struct {
	Backend string

	// LocalBaseURL prefixes paths for the local backend (e.g. "/files/proofs"
	// or "https://cdn.example.com/proofs").
	LocalBaseURL string

	S3Region  string
	S3Bucket  string
	S3Prefix  string
	S3Expires time.Duration

	// CacheTTL bounds how long a resolved URL is reused. It is capped below
	// S3Expires so cached links never outlive their signature.
	CacheTTL time.Duration
}

// New builds a cached resolver for cfg.
func New(ctx context.Context, cfg Config) (*Cached, error) {
	var r Resolver
	switch strings.ToLower(cfg.Backend) {
	case "", BackendLocal:
		r = Local{BaseURL: cfg.LocalBaseURL}
	case BackendS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("proofurl: s3 bucket is required")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			return nil, fmt.Errorf("proofurl: load aws config: %w", err)
		}
		r = NewS3(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix, cfg.S3Expires)
	default:
		return nil, fmt.Errorf("proofurl: unknown backend %q", cfg.Backend)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if cfg.S3Expires > 0 && ttl >= cfg.S3Expires {
		ttl = cfg.S3Expires / 2
	}
	return NewCached(r, ttl), nil
}

// Local serves proofs from a static URL prefix.
type Local struct {
	BaseURL string
}

func (l Local) URL(_ context.Context, objectPath string) (string, error) {
	p := strings.TrimLeft(objectPath, "/")
	if p == "" {
		return "", errors.New("proofurl: empty path")
	}
	base := strings.TrimRight(l.BaseURL, "/")
	if base == "" {
		return "/" + escapePath(p), nil
	}
	return base + "/" + escapePath(p), nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

// S3 returns presigned GET URLs for objects in one bucket.
type S3 struct {
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expires time.Duration
}

// NewS3 wraps client. A non-positive expires defaults to 15 minutes.
func NewS3(client *s3.Client, bucket, prefix string, expires time.Duration) *S3 {
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	return &S3{presign: s3.NewPresignClient(client), bucket: bucket, prefix: prefix, expires: expires}
}

func (s *S3) URL(ctx context.Context, objectPath string) (string, error) {
	key := path.Join(s.prefix, strings.TrimLeft(objectPath, "/"))
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Cached memoizes another Resolver.
type Cached struct {
	next  Resolver
	cache *gocache.Cache
}

func NewCached(next Resolver, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: gocache.New(ttl, 2*ttl)}
}

func (c *Cached) URL(ctx context.Context, objectPath string) (string, error) {
	if v, ok := c.cache.Get(objectPath); ok {
		if u, ok := v.(string); ok {
			return u, nil
		}
	}
	u, err := c.next.URL(ctx, objectPath)
	if err != nil {
		return "", err
	}
	c.cache.SetDefault(objectPath, u)
	return u, nil
}

// Resolve returns the proof for a stored path. A nil or blank path is
// "no proof" and never an error.
func (c *Cached) Resolve(ctx context.Context, objectPath *string) (Proof, error) {
	if objectPath == nil || strings.TrimSpace(*objectPath) == "" {
		return Proof{HasProof: false}, nil
	}
	u, err := c.URL(ctx, strings.TrimSpace(*objectPath))
	if err != nil {
		return Proof{HasProof: true}, err
	}
	return Proof{HasProof: true, URL: u}, nil
}
