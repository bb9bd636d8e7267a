/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads shmcalc settings from SHMCALC_* environment variables.
//
// The worker inherits the producer's environment, so both roles resolve the
// same segment name and backing directory without passing anything on the
// command line.
package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	internalshm "github.com/srediag/shmcalc/internal/shm"
	"github.com/srediag/shmcalc/pkg/shm"
)

// Prefix is prepended to every variable name, e.g. SHMCALC_SEGMENT_NAME.
const Prefix = "shmcalc"

const maxChunkSize = shm.Capacity

// Config holds all shmcalc configuration.
type Config struct {
	SegmentName string `envconfig:"SEGMENT_NAME" default:"/shared_mem_example"`
	ShmDir      string `envconfig:"SHM_DIR" default:"/dev/shm"`
	ChunkSize   int    `envconfig:"CHUNK_SIZE" default:"256"`
	// WorkerPath is the executable spawned as the worker. Empty means the
	// running binary with WorkerArgs.
	WorkerPath  string   `envconfig:"WORKER_PATH"`
	WorkerArgs  []string `envconfig:"WORKER_ARGS" default:"worker"`
	MetricsFile string   `envconfig:"METRICS_FILE"`
	Log         LogConfig
}

// LogConfig holds logging configuration. Its keys are nested under the Log
// field, so they read as SHMCALC_LOG_LEVEL and SHMCALC_LOG_DEV.
type LogConfig struct {
	Level       string `envconfig:"LEVEL" default:"warn"`
	Development bool   `envconfig:"DEV" default:"false"`
}

// DefaultConfig returns the configuration used when no variable is set.
func DefaultConfig() *Config {
	return &Config{
		SegmentName: shm.DefaultName,
		ShmDir:      internalshm.DefaultDir,
		ChunkSize:   shm.DefaultChunkSize,
		WorkerArgs:  []string{"worker"},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads the environment and verifies the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := VerifyConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// VerifyConfig rejects settings the segment protocol cannot work with.
func VerifyConfig(config *Config) error {
	if config == nil {
		return errors.New("config is nil")
	}
	if _, err := internalshm.ObjectPath(config.ShmDir, config.SegmentName); err != nil {
		return fmt.Errorf("segment name %q: %w", config.SegmentName, err)
	}
	if config.ChunkSize <= 0 || config.ChunkSize > maxChunkSize {
		return fmt.Errorf("chunk size must be in (0, %d], got %d", maxChunkSize, config.ChunkSize)
	}
	switch config.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.Log.Level)
	}
	return nil
}

// SegmentOptions returns the shm options naming the configured segment.
func (c *Config) SegmentOptions() shm.Options {
	return shm.Options{Name: c.SegmentName, Dir: c.ShmDir}
}
