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

package config

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestVerifyConfig() {
	config := DefaultConfig()
	s.Require().NoError(VerifyConfig(config))

	config.ChunkSize = 0
	s.Require().Error(VerifyConfig(config))
	config.ChunkSize = 4097
	s.Require().Error(VerifyConfig(config))
	config.ChunkSize = 4096
	s.Require().NoError(VerifyConfig(config))

	config.SegmentName = "/nested/name"
	s.Require().Error(VerifyConfig(config))
	config.SegmentName = "/"
	s.Require().Error(VerifyConfig(config))
	config.SegmentName = "plain"
	s.Require().NoError(VerifyConfig(config))

	config.Log.Level = "verbose"
	s.Require().Error(VerifyConfig(config))
	config.Log.Level = "debug"
	s.Require().NoError(VerifyConfig(config))

	s.Require().Error(VerifyConfig(nil))
}

func (s *ConfigTestSuite) TestLoadDefaults() {
	cfg, err := Load()
	s.Require().NoError(err)
	s.Require().Equal(DefaultConfig(), cfg)
}

func (s *ConfigTestSuite) TestLoadFromEnv() {
	s.T().Setenv("SHMCALC_SEGMENT_NAME", "/from_env")
	s.T().Setenv("SHMCALC_SHM_DIR", "/tmp")
	s.T().Setenv("SHMCALC_CHUNK_SIZE", "64")
	s.T().Setenv("SHMCALC_WORKER_PATH", "/usr/local/bin/child")
	s.T().Setenv("SHMCALC_WORKER_ARGS", "a,b")
	s.T().Setenv("SHMCALC_LOG_LEVEL", "debug")
	s.T().Setenv("SHMCALC_LOG_DEV", "true")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal("/from_env", cfg.SegmentName)
	s.Equal("/tmp", cfg.ShmDir)
	s.Equal(64, cfg.ChunkSize)
	s.Equal("/usr/local/bin/child", cfg.WorkerPath)
	s.Equal([]string{"a", "b"}, cfg.WorkerArgs)
	s.Equal("debug", cfg.Log.Level)
	s.True(cfg.Log.Development)

	opts := cfg.SegmentOptions()
	s.Equal("/from_env", opts.Name)
	s.Equal("/tmp", opts.Dir)
}

func (s *ConfigTestSuite) TestLogKeysAreNotDoubled() {
	s.T().Setenv("SHMCALC_LOG_LOG_LEVEL", "error")
	s.T().Setenv("SHMCALC_LOG_LOG_DEV", "true")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal("warn", cfg.Log.Level)
	s.False(cfg.Log.Development)
}

func (s *ConfigTestSuite) TestLoadRejectsInvalid() {
	s.T().Setenv("SHMCALC_CHUNK_SIZE", "-1")
	_, err := Load()
	s.Require().Error(err)

	s.T().Setenv("SHMCALC_CHUNK_SIZE", "many")
	_, err = Load()
	s.Require().Error(err)
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
