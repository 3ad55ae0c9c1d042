package style

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/unveil/unveil/internal/cache"
)

type cached struct {
	next  Compiler
	store *cache.Memory[string]
}

// Cached wraps c so that output is reused for a source compiled before.
// Failures are not cached.
func Cached(c Compiler, store *cache.Memory[string]) Compiler {
	return cached{next: c, store: store}
}

func (c cached) Compile(ctx context.Context, source string) (string, error) {
	sum := sha256.Sum256([]byte(source))
	key := hex.EncodeToString(sum[:])
	if out, ok := c.store.Get(key); ok {
		return out, nil
	}

	out, err := c.next.Compile(ctx, source)
	if err != nil {
		return "", err
	}
	c.store.Set(key, out)
	return out, nil
}
