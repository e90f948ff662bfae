//go:build integration

package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	pginfra "github.com/MinhTruong204/movie-booking-system-sub000/internal/infrastructure/postgres"
)

// MigrationsPath はリポジトリ直下の migrations ディレクトリを返す
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// StartPostgres はマイグレーション済みの PostgreSQL コンテナを起動する
func StartPostgres(ctx context.Context) (*sqlx.DB, func(), error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithDatabase("movie_booking"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres コンテナ起動に失敗: %w", err)
	}
	terminate := func() { _ = container.Terminate(context.Background()) }

	connStr, err := container.ConnectionString(ctx, "sslmode=disable", "application_name=test")
	if err != nil {
		terminate()
		return nil, nil, err
	}
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		terminate()
		return nil, nil, err
	}
	db.SetMaxOpenConns(50)

	if err := pginfra.RunMigrations(db.DB, MigrationsPath()); err != nil {
		db.Close()
		terminate()
		return nil, nil, err
	}

	return db, func() {
		db.Close()
		terminate()
	}, nil
}

// StartRedis は Redis コンテナを起動してクライアントを返す
func StartRedis(ctx context.Context) (*goredis.Client, func(), error) {
	container, err := tcredis.RunContainer(ctx, testcontainers.WithImage("docker.io/redis:7"))
	if err != nil {
		return nil, nil, fmt.Errorf("redis コンテナ起動に失敗: %w", err)
	}
	terminate := func() { _ = container.Terminate(context.Background()) }

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		terminate()
		return nil, nil, err
	}
	opts, err := goredis.ParseURL(uri)
	if err != nil {
		terminate()
		return nil, nil, err
	}
	client := goredis.NewClient(opts)

	return client, func() {
		client.Close()
		terminate()
	}, nil
}
