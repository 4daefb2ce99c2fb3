package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 环境变量名
const (
	EnvLogLevel        = "SCULPIN_LOG_LEVEL"
	EnvLogFormat       = "SCULPIN_LOG_FORMAT"
	EnvHashMB          = "SCULPIN_HASH_MB"
	EnvMoveOverheadMS  = "SCULPIN_MOVE_OVERHEAD_MS"
	EnvDefaultMoveTime = "SCULPIN_DEFAULT_MOVETIME_MS"
)

type Config struct {
	Logs   LogConfig
	Engine EngineConfig
}

type LogConfig struct {
	Level  string // trace/debug/info/warn/error
	Format string // console 或 json
}

type EngineConfig struct {
	HashMB          int
	MoveOverhead    time.Duration
	DefaultMoveTime time.Duration // go 不带任何限制时的思考时间
}

func Default() Config {
	return Config{
		Logs: LogConfig{Level: "info", Format: "console"},
		Engine: EngineConfig{
			HashMB:          16,
			MoveOverhead:    50 * time.Millisecond,
			DefaultMoveTime: 10 * time.Second,
		},
	}
}

// Load 先读 env 文件，再用 SCULPIN_* 覆盖默认值。
// envFiles 为空时读当前目录的 .env，不存在就跳过；显式给出的文件必须存在。
func Load(envFiles ...string) (Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && (len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist)) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv 从给定的查找函数读配置，方便测试。
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logs.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		v = strings.ToLower(v)
		if v != "console" && v != "json" {
			return Config{}, fmt.Errorf("%s: want console or json, got %q", EnvLogFormat, v)
		}
		cfg.Logs.Format = v
	}

	hash, err := intVar(lookup, EnvHashMB, cfg.Engine.HashMB, 1, 1024)
	if err != nil {
		return Config{}, err
	}
	cfg.Engine.HashMB = hash

	overhead, err := intVar(lookup, EnvMoveOverheadMS, int(cfg.Engine.MoveOverhead.Milliseconds()), 0, 5000)
	if err != nil {
		return Config{}, err
	}
	cfg.Engine.MoveOverhead = time.Duration(overhead) * time.Millisecond

	moveTime, err := intVar(lookup, EnvDefaultMoveTime, int(cfg.Engine.DefaultMoveTime.Milliseconds()), 1, 3_600_000)
	if err != nil {
		return Config{}, err
	}
	cfg.Engine.DefaultMoveTime = time.Duration(moveTime) * time.Millisecond

	return cfg, nil
}

func intVar(lookup func(string) (string, bool), name string, def, lo, hi int) (int, error) {
	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s: %d out of range [%d, %d]", name, n, lo, hi)
	}
	return n, nil
}
