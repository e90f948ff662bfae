//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/testutil"
)

var testClient *goredis.Client

func TestMain(m *testing.M) {
	client, teardown, err := testutil.StartRedis(context.Background())
	if err != nil {
		fmt.Printf("redis コンテナを起動できません: %v\n", err)
		os.Exit(1)
	}
	testClient = client
	code := m.Run()
	teardown()
	os.Exit(code)
}
