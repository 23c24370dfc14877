/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package database

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/lib/pq"

	"github.com/niemenmaa/ynab-importer/internal/system/config"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
)

// PostgresDB holds the shared database connection.
type PostgresDB struct {
	DB *sql.DB
}

var (
	postgresInstance *PostgresDB
	postgresOnce     sync.Once
)

// ConnectPostgres initializes the global PostgreSQL connection from the
// datasource configuration. Fatal on failure; the service cannot run
// without its rule and import-history store.
func ConnectPostgres(ds config.DataSourceConfig) *PostgresDB {
	postgresOnce.Do(func() {
		sslMode := ds.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			ds.Hostname, ds.Port, ds.Username, ds.Password, ds.Name, sslMode)

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.GetLogger().Fatal("Failed to create PostgreSQL client", log.Error(err))
		}

		if err = db.Ping(); err != nil {
			log.GetLogger().Fatal("Failed to connect to PostgreSQL", log.Error(err))
		}

		log.GetLogger().Info("Connected to PostgreSQL", log.String("database", ds.Name))

		postgresInstance = &PostgresDB{
			DB: db,
		}
	})

	return postgresInstance
}

// GetPostgresInstance returns the PostgreSQL instance.
func GetPostgresInstance() *PostgresDB {
	return postgresInstance
}

// SetPostgresInstance overrides the global instance. Test hook.
func SetPostgresInstance(db *sql.DB) {
	postgresInstance = &PostgresDB{DB: db}
}

// InitSchema executes the bootstrap SQL script against the connection.
func (p *PostgresDB) InitSchema(schemaFile string) error {
	sqlBytes, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err = p.DB.Exec(string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	log.GetLogger().Info("Database schema created successfully")
	return nil
}
