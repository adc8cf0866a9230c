package keyValue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type localValue struct {
	value   string
	expires time.Time
}

var mutex sync.RWMutex
var hashmap = make(map[string]localValue)

var sugar *zap.SugaredLogger
var redisClient *redis.Client
var redisCtx = context.Background()
var selfContained = true

func Setup(_sugar *zap.SugaredLogger, _redisClient *redis.Client, _selfContained bool) {
	sugar = _sugar
	redisClient = _redisClient
	selfContained = _selfContained

	if selfContained {
		go checkForLocalExpiredKeys()
	}
}

func checkForLocalExpiredKeys() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		mutex.Lock()
		for key, v := range hashmap {
			if v.expires.Before(time.Now()) {
				delete(hashmap, key)
			}
		}
		mutex.Unlock()
	}
}

func Get(key string) (string, error) {
	if selfContained {
		mutex.RLock()
		defer mutex.RUnlock()

		return hashmap[key].value, nil
	}

	value, err := redisClient.Get(redisCtx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return value, nil
}

func GetDel(key string) (string, error) {
	if selfContained {
		mutex.Lock()
		defer mutex.Unlock()

		value := hashmap[key].value
		delete(hashmap, key)

		return value, nil
	}

	value, err := redisClient.GetDel(redisCtx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return value, nil
}

func Set(key string, value string, expires time.Duration) error {
	sugar.Debugf("Setting key [%s]", key)

	if selfContained {
		mutex.Lock()
		defer mutex.Unlock()

		hashmap[key] = localValue{value, time.Now().Add(expires)}

		return nil
	}

	_, err := redisClient.Set(redisCtx, key, value, expires).Result()
	return err
}
