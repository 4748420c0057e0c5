package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/cloudfront/sign"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const DefaultSignedURLTTL = 600 * time.Second

var _ URLSigner = (*CloudFrontSigner)(nil)

// CloudFrontSigner signs canned-policy URLs for objects behind a CloudFront distribution.
// Signed URLs are reused for half their lifetime.
type CloudFrontSigner struct {
	domain string
	ttl    time.Duration
	signer *sign.URLSigner
	cache  *cache.Cache
	now    func() time.Time
	logger *zap.Logger
}

// NewCloudFrontSigner parses privateKeyPEM (PKCS#1 or PKCS#8 RSA).
func NewCloudFrontSigner(domain, keyPairID, privateKeyPEM string, ttl time.Duration, logger *zap.Logger) (*CloudFrontSigner, error) {
	if domain == "" || keyPairID == "" || privateKeyPEM == "" {
		return nil, fmt.Errorf("cloudfront signer requires domain, key pair id and private key")
	}
	key, err := sign.LoadPEMPrivKey(strings.NewReader(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse cloudfront private key: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	reuse := ttl / 2
	return &CloudFrontSigner{
		domain: strings.TrimSuffix(strings.TrimPrefix(domain, "https://"), "/"),
		ttl:    ttl,
		signer: sign.NewURLSigner(keyPairID, key),
		cache:  cache.New(reuse, ttl),
		now:    time.Now,
		logger: logger.Named("CloudFrontSigner"),
	}, nil
}

func (s *CloudFrontSigner) Sign(key string) (string, bool) {
	key = strings.TrimPrefix(key, "/")
	if cached, ok := s.cache.Get(key); ok {
		return cached.(string), true
	}

	rawURL := fmt.Sprintf("https://%s/%s", s.domain, key)
	signed, err := s.signer.Sign(rawURL, s.now().Add(s.ttl))
	if err != nil {
		s.logger.Error("Failed to sign URL", zap.String("key", key), zap.Error(err))
		return "", false
	}
	s.cache.SetDefault(key, signed)
	return signed, true
}
