package logx

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New 构造日志。stdout 留给 UCI 协议，所以调用方应传 os.Stderr。
// format 为 json 时输出 JSON，否则用 ConsoleWriter。
func New(w io.Writer, format, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
