package errx

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to AppError: redis.Nil becomes KindNotFound,
// everything else KindInternal.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(KindNotFound, RedisNotFoundMessage, err)
	}

	return New(KindInternal, RedisErrorMessage, err)
}
