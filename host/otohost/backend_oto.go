//go:build !headless

package otohost

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-binaural/host"
)

type otoBackend struct {
	ctx *oto.Context
}

func (b otoBackend) NewPlayer(r io.Reader) player {
	return otoPlayer{b.ctx.NewPlayer(r)}
}

type otoPlayer struct {
	p *oto.Player
}

func (o otoPlayer) Play()      { o.p.Play() }
func (o otoPlayer) Pause()     { o.p.Pause() }
func (o otoPlayer) Err() error { return o.p.Err() }
func (o otoPlayer) Close()     { o.p.Close() }

var openBackend = func(cfg contextConfig) (backend, error) {
	var format oto.Format
	switch cfg.Format {
	case host.FormatF32:
		format = oto.FormatFloat32LE
	case host.FormatI16:
		format = oto.FormatSignedInt16LE
	case host.FormatU8:
		format = oto.FormatUnsignedInt8
	default:
		return nil, fmt.Errorf("otohost: oto cannot play %v", cfg.Format)
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       format,
		BufferSize:   cfg.Buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("otohost: failed to create oto context: %w", err)
	}
	<-ready
	return otoBackend{ctx: ctx}, nil
}
