// SPDX-License-Identifier: EPL-2.0

// Command sfxplay plays sound effects from a manifest through the channel
// pool, firing the named keys once per tick.
//
//	sfxplay --manifest sounds.yaml --tick 250ms --loop engine step step hit
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ik5/sndpool"
	"github.com/ik5/sndpool/backend"
	"github.com/ik5/sndpool/backend/beepdev"
	"github.com/ik5/sndpool/backend/otodev"
	"github.com/ik5/sndpool/config"
	applogger "github.com/ik5/sndpool/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet("sfxplay", pflag.ExitOnError)
	cfgPath := flags.StringP("config", "c", "", "config file (default ./sndpool.yaml if present)")
	tick := flags.Duration("tick", 250*time.Millisecond, "interval between flushes")
	duration := flags.DurationP("duration", "d", 0, "stop after this long (0 runs until interrupted)")
	loopKey := flags.String("loop", "", "sound key to hold on a looping channel")
	music := flags.String("music", "", "file to loop on a named source")
	flags.String("backend", config.BackendOto, "audio backend: oto or beep")
	flags.Int("sample-rate", 44100, "device sample rate")
	flags.Int("buffer-ms", 50, "device buffer in milliseconds")
	flags.Int("pool-size", 16, "number of pooled channels")
	flags.Bool("mono", true, "downmix sounds on load")
	flags.String("manifest", "", "YAML file mapping sound keys to files")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: sfxplay [flags] <key>...")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, *cfgPath, flags)
	if err != nil {
		fallback, _ := zap.NewProduction()
		defer fallback.Sync()
		fallback.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := applogger.New(cfg.Log)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	sounds, err := cfg.Manifest(fs)
	if err != nil {
		logger.Fatal("failed to load manifest", zap.Error(err))
	}

	keys := normalizeKeys(flags.Args())
	if err := checkArgs(*tick, keys, *loopKey, *music); err != nil {
		fmt.Fprintln(os.Stderr, "sfxplay:", err)
		flags.Usage()
		os.Exit(2)
	}

	sys, err := sndpool.Open(opener(cfg, logger), sounds, sndpool.Options{
		PoolSize: cfg.PoolSize,
		Mono:     cfg.Mono,
		Fs:       fs,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to open sound system", zap.Error(err))
	}
	if missing := unknownKeys(sys.Keys(), append(slices.Clone(keys), strings.ToLower(*loopKey))); len(missing) > 0 {
		logger.Warn("keys not in the manifest will be dropped", zap.Strings("keys", missing))
	}

	if err := run(sys, keys, strings.ToLower(*loopKey), *music, *tick, *duration, logger); err != nil {
		logger.Error("playback failed", zap.Error(err))
	}

	st := sys.Stats()
	logger.Info("stopped",
		zap.Int("dispatched", st.Dispatched),
		zap.Int("dropped", st.Dropped),
		zap.Int("pool_size", st.PoolSize))

	if err := sys.Close(); err != nil {
		logger.Error("closing sound system", zap.Error(err))
	}
}

// normalizeKeys lowercases keys to match the manifest.
func normalizeKeys(args []string) []string {
	keys := make([]string, 0, len(args))
	for _, k := range args {
		keys = append(keys, strings.ToLower(k))
	}
	return keys
}

func checkArgs(tick time.Duration, keys []string, loopKey, music string) error {
	if tick <= 0 {
		return fmt.Errorf("--tick must be positive, got %s", tick)
	}
	if len(keys) == 0 && loopKey == "" && music == "" {
		return errors.New("nothing to play")
	}
	return nil
}

// unknownKeys returns the non-empty entries of want missing from have.
func unknownKeys(have, want []string) []string {
	var missing []string
	for _, k := range want {
		if k != "" && !slices.Contains(have, k) && !slices.Contains(missing, k) {
			missing = append(missing, k)
		}
	}
	return missing
}

func opener(cfg config.Config, logger *zap.Logger) backend.Opener {
	buf := time.Duration(cfg.BufferMS) * time.Millisecond
	if cfg.Backend == config.BackendBeep {
		return beepdev.Opener(beepdev.Options{SampleRate: cfg.SampleRate, BufferSize: buf, Logger: logger})
	}
	return otodev.Opener(otodev.Options{SampleRate: cfg.SampleRate, BufferSize: buf, Logger: logger})
}

func run(sys *sndpool.System[string], keys []string, loopKey, music string, tick, duration time.Duration, logger *zap.Logger) error {
	if music != "" {
		named := sys.Named()
		if err := named.CreateSource("music"); err != nil {
			return err
		}
		if err := named.LoadSound("music", music); err != nil {
			return err
		}
		if err := named.SetLooping("music", true); err != nil {
			return err
		}
		if err := named.Play("music", "music"); err != nil {
			return err
		}
	}

	if loopKey != "" {
		h, ok, err := sys.AcquireLoop(loopKey, mgl32.Vec3{}, backend.FullGain)
		switch {
		case err != nil:
			return err
		case !ok:
			logger.Warn("no free channel for loop", zap.String("key", loopKey))
		default:
			logger.Info("holding loop", zap.String("key", loopKey), zap.Stringer("handle", h))
			defer func() {
				if err := sys.ReleaseLoop(h); err != nil {
					logger.Error("releasing loop", zap.Error(err))
				}
			}()
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var deadline <-chan time.Time
	if duration > 0 {
		deadline = time.After(duration)
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return nil
		case <-deadline:
			return nil
		case <-ticker.C:
			for _, k := range keys {
				sys.Enqueue(k, mgl32.Vec3{}, backend.FullGain)
			}
			res := sys.Flush()
			if res.Dropped > 0 {
				logger.Debug("dropped sounds", zap.Int("dropped", res.Dropped), zap.Int("dispatched", res.Dispatched))
			}
		}
	}
}
