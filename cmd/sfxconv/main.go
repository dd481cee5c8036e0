// SPDX-License-Identifier: EPL-2.0

// Command sfxconv converts a sound file into the 16-bit WAV layout the
// sound system loads fastest: the device sample rate, optionally mono.
//
//	sfxconv --rate 44100 --mono hit.ogg hit.wav
package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ik5/sndpool/audio"
	"github.com/ik5/sndpool/formats"
	"github.com/ik5/sndpool/formats/wav"
	applogger "github.com/ik5/sndpool/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet("sfxconv", pflag.ExitOnError)
	rate := flags.IntP("rate", "r", 8000, "output sample rate")
	mono := flags.BoolP("mono", "m", true, "downmix to one channel")
	level := flags.String("log-level", "info", "debug, info, warn or error")
	reg := formats.NewRegistry()
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: sfxconv [flags] <input.{%s}> <output.wav>\n", supported(reg))
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	if flags.NArg() != 2 {
		flags.Usage()
		os.Exit(1)
	}
	inPath, outPath := flags.Arg(0), flags.Arg(1)

	logger, err := applogger.New(applogger.Config{Level: *level, Stdout: true})
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	clip, err := convert(afero.NewOsFs(), reg, inPath, outPath, *rate, *mono)
	if err != nil {
		logger.Fatal("conversion failed", zap.String("input", inPath), zap.Error(err))
	}

	logger.Info("wrote",
		zap.String("output", outPath),
		zap.Int("sample_rate", clip.SampleRate),
		zap.Int("channels", clip.Channels),
		zap.Duration("duration", clip.Duration()))
}

// supported lists the input extensions reg decodes, sorted.
func supported(reg *audio.Registry) string {
	exts := reg.Formats()
	slices.Sort(exts)
	return strings.Join(exts, "|")
}

// convert decodes inPath, resamples it to rate and writes it to outPath.
func convert(fs afero.Fs, reg *audio.Registry, inPath, outPath string, rate int, mono bool) (*audio.Clip, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: rate %d", audio.ErrInvalidFormat, rate)
	}

	dec, err := reg.ForPath(inPath)
	if err != nil {
		return nil, err
	}

	in, err := fs.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	clip, err := dec.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", inPath, err)
	}

	clip = clip.Resample(rate)
	if mono {
		clip = clip.Mono()
	}

	out, err := fs.Create(outPath)
	if err != nil {
		return nil, err
	}
	if err := wav.Encode(out, clip); err != nil {
		out.Close()
		return nil, err
	}
	return clip, out.Close()
}
