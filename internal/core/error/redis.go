package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, CodeNotFound, RedisNotFoundMessage)
	}

	return New(err, http.StatusBadGateway, CodeUpstream, RedisErrorMessage)
}
