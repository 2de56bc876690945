// Copyright 2025 The DBQ Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqltable

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// ConnectionConfig holds the settings of one datasource connection.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	PoolSize int
}

func (c ConnectionConfig) poolSize() int {
	if c.PoolSize > 0 {
		return c.PoolSize
	}
	return 8
}

func NewPostgresqlConnection(cfg ConnectionConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.poolSize())
	db.SetMaxIdleConns(cfg.poolSize())

	return db, nil
}

func NewMysqlConnection(cfg ConnectionConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	db, err := sql.Open("mysql", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.poolSize())
	db.SetMaxIdleConns(cfg.poolSize())

	return db, nil
}

func NewClickhouseConnection(cfg ConnectionConfig) (*sql.DB, error) {
	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})

	db.SetMaxOpenConns(cfg.poolSize())
	db.SetMaxIdleConns(cfg.poolSize())

	return db, nil
}

// Open connects to a datasource by driver name and wraps it in a Database.
func Open(driverName string, cfg ConnectionConfig, logger *slog.Logger) (*Database, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driverName {
	case "postgres":
		db, err = NewPostgresqlConnection(cfg)
	case "mysql":
		db, err = NewMysqlConnection(cfg)
	case "clickhouse":
		db, err = NewClickhouseConnection(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connection: %w", driverName, err)
	}

	return NewDatabase(db, driverName, logger)
}

// OpenDSN connects with a raw driver-specific DSN instead of a structured
// config.
func OpenDSN(driverName, dsn string, logger *slog.Logger) (*Database, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connection: %w", driverName, err)
	}
	return NewDatabase(db, driverName, logger)
}
