package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// cacheTTL bounds how long a dedup entry survives; re-ingestion of the
// same opinion within this window skips the embedding call entirely.
const cacheTTL = 7 * 24 * time.Hour

// Cache dedups embedding calls on re-ingestion, content-addressed by the
// truncated input text (grounded in semaj90-mau5law's RedisCache).
type Cache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Set(ctx context.Context, text string, vector []float32)
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the REDIS_URL embedding cache. A nil return
// with no error means REDIS_URL was empty and caching is disabled.
func NewRedisCache(url string) (*RedisCache, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, text string) ([]float32, bool) {
	raw, err := c.client.Get(ctx, cacheKey(text)).Bytes()
	if err != nil {
		return nil, false
	}
	return decodeVector(raw), true
}

func (c *RedisCache) Set(ctx context.Context, text string, vector []float32) {
	c.client.Set(ctx, cacheKey(text), encodeVector(vector), cacheTTL)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
