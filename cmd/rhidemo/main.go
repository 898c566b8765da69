// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command rhidemo drives a render queue with a producer goroutine and a
// render loop on one of the registered backends.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/wgpu"
	"github.com/gogpu/rhi/queue"
	"github.com/gogpu/rhi/render"

	_ "github.com/gogpu/rhi/backend/soft"
)

var stateKinds = [...]rhi.Kind{
	rhi.KindBlendState,
	rhi.KindDepthTestState,
	rhi.KindFaceCullingState,
	rhi.KindStencilTestState,
}

func main() {
	var (
		backend  = flag.String("backend", "soft", "backend name (soft, wgpu)")
		frames   = flag.Int("frames", 120, "frames to submit")
		nodes    = flag.Int("nodes", 256, "draw nodes per frame")
		capacity = flag.Int("capacity", queue.DefaultInitialCapacity, "initial queue capacity")
		drop     = flag.Bool("drop", false, "drop stale frames instead of waiting")
		snapshot = flag.String("snapshot", "", "write the last wgpu frame to this PNG file")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	rhi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	b, err := rhi.Open(*backend)
	if err != nil {
		log.Fatalf("open backend: %v (available: %v)", err, rhi.Backends())
	}

	cfg := queue.DefaultConfig()
	cfg.InitialCapacity = *capacity
	if *drop {
		cfg.Backpressure = queue.BackpressureDrop
	}
	rc := render.NewContext(rhi.NewDevice(b), cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- produce(ctx, rc, *frames, *nodes)
	}()

	loop := render.NewLoop(rc)
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("render loop: %v", err)
	}
	if err := <-errc; err != nil {
		log.Printf("producer: %v", err)
	}

	if *snapshot != "" {
		if err := writeSnapshot(b, *snapshot); err != nil {
			log.Printf("snapshot: %v", err)
		}
	}

	report(b, rc, loop)
	if err := rc.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}
}

// produce submits frames of triangles. Node i enables the states in the
// low four bits of i and is keyed by them, so each frame sorts into runs
// sharing one state set.
func produce(ctx context.Context, rc *render.Context, frames, nodes int) error {
	defer rc.Queue.Close()

	dev := rc.Device
	vb, err := dev.CreateVertexBuffer(3 * wgpu.VertexStride)
	if err != nil {
		return err
	}
	defer vb.Release()

	var states [len(stateKinds)]rhi.Handle[rhi.State]
	for i, kind := range stateKinds {
		if states[i], err = dev.CreateState(kind); err != nil {
			return err
		}
		defer states[i].Release()
	}

	for f := range frames {
		for i := range nodes {
			mask := uint64(i) & 0xF
			n := queue.Node{
				Key:          mask,
				VertexBuffer: vb,
				Data:         triangle(f, i, nodes),
				Params:       rhi.DrawParams{VertexCount: 3},
			}
			for bit := range states {
				if mask&(1<<bit) != 0 {
					n.States = append(n.States, states[bit])
				}
			}
			rc.Queue.Submit(n)
		}
		if err := rc.Queue.Swap(ctx); err != nil {
			return err
		}
	}
	// With BackpressureWait an empty swap returns once the last frame has
	// executed.
	if err := rc.Queue.Swap(ctx); err != nil {
		return err
	}
	return nil
}

// triangle returns a small colored triangle rotating around the center.
func triangle(frame, i, n int) []byte {
	angle := 2*math.Pi*float64(i)/float64(n) + float64(frame)*0.05
	cx, cy := 0.6*math.Cos(angle), 0.6*math.Sin(angle)
	const r = 0.08
	hue := float64(i) / float64(n)

	data := make([]byte, 0, 3*wgpu.VertexStride)
	for v := range 3 {
		a := angle + float64(v)*2*math.Pi/3
		for _, f := range [...]float64{
			cx + r*math.Cos(a), cy + r*math.Sin(a),
			hue, 1 - hue, 0.5, 1,
		} {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(f)))
		}
	}
	return data
}

func writeSnapshot(b rhi.Backend, path string) error {
	wb, ok := b.(*wgpu.Backend)
	if !ok {
		return fmt.Errorf("backend %q has no color target", b.Name())
	}
	img, err := wb.Snapshot()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func report(b rhi.Backend, rc *render.Context, loop *render.Loop) {
	p := message.NewPrinter(language.English)
	p.Printf("backend:  %s\n", b.Name())
	p.Printf("frames:   %d executed\n", loop.Frames())
	p.Printf("queue:    %v\n", rc.Queue.Stats())
	p.Printf("executor: %v\n", loop.Executor.Stats())
	p.Printf("release:  %v\n", rc.Device.Releases().Stats())
	if wb, ok := b.(*wgpu.Backend); ok {
		p.Printf("gpu:      %v\n", wb.Stats())
	}
}
