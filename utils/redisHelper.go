package utils

import (
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/Danielsjcampos/elance-sub000/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

// get type name of struct
func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

func redisListKey[T any](organizationId string) string {
	return GetTypeName[T]() + "s:" + organizationId
}

// cache a per-organization list, keyed by element type
func StoreRedisList[T any](objs []*T, organizationId string) error {
	return config.SetRedisObject(redisListKey[T](organizationId), objs, GetCacheLifespan())
}

// read back a cached list; (nil, nil) on cache miss
func RetrieveRedisList[T any](organizationId string) ([]*T, error) {
	var results []*T
	found, err := config.GetRedisObject(redisListKey[T](organizationId), &results)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return results, nil
}

func ClearRedisList[T any](organizationId string) error {
	return config.RemoveRedisKey(redisListKey[T](organizationId))
}
