package logger

import (
	"context"
	"errors"
	"os"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	JSON      bool `default:"false"` // trueならJSONフォーマット
	NoColor   bool `default:"false"` // trueなら色付けしない
	Verbose   int  `default:"0"`     // 0はInfo相当 1以上でDebug
	Quiet     bool `default:"false"` // trueでWarn以上に引き上げる
	AddCaller bool `default:"false"` // trueならログに呼び出し元情報を追加する

	// File が空でなければ標準エラーに加えて JSON でファイルにも書き出す
	File       string `default:""`
	MaxSizeMB  int    `default:"100"`
	MaxBackups int    `default:"3"`
	MaxAgeDays int    `default:"28"`
	Compress   bool   `default:"false"`
}

func (c Config) level() zapcore.Level {
	level := zapcore.InfoLevel
	if c.Quiet {
		level = zapcore.WarnLevel
	}
	if c.Verbose > 0 && !c.Quiet {
		level = zapcore.DebugLevel
	}
	return level
}

func NewLogger(cfg Config) (*zap.Logger, func(context.Context) error, error) {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		EncodeTime:     func(t time.Time, enc zapcore.PrimitiveArrayEncoder) { enc.AppendString(t.Format(time.RFC3339)) },
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var enc zapcore.Encoder
	if cfg.JSON {
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		if cfg.NoColor || runtime.GOOS == "windows" {
			encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		} else {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	// CLIなので標準エラー出力にログを出す
	ws := zapcore.AddSync(os.Stderr)
	level := cfg.level()
	core := zapcore.NewCore(enc, ws, level)

	var rotator *lumberjack.Logger
	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		fileCfg := encCfg
		fileCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), level))
	}

	opts := []zap.Option{
		zap.ErrorOutput(ws),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
	if cfg.AddCaller || level == zapcore.DebugLevel {
		opts = append(opts, zap.AddCaller())
	}

	lg := zap.New(core, opts...)

	cleanup := func(_ context.Context) error {
		var errs error
		if err := lg.Sync(); err != nil {
			// 標準出力・標準エラーに対する Sync は多くの環境で EINVAL 等になるため無視する
			if !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTSUP) && !errors.Is(err, syscall.EBADF) {
				errs = multierr.Append(errs, err)
			}
		}
		if rotator != nil {
			errs = multierr.Append(errs, rotator.Close())
		}
		return errs
	}
	return lg, cleanup, nil
}
