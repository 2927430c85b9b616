// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package backend

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/spin/menu"
	"github.com/gogpu/spin/pyramid"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

//go:embed shaders/quad.wgsl
var quadShaderSource string

func init() {
	Register(BackendGPU, newGPU)
}

const (
	// uploadChunkRows bounds the row band per WriteTexture call so
	// CPU-side staging stays independent of image size.
	uploadChunkRows = 64

	// copyPitchAlignment is the BytesPerRow alignment required for
	// texture-to-buffer copies.
	copyPitchAlignment = 256

	gpuWaitTimeout = 5 * time.Second
)

// gpuBackend renders with gogpu/wgpu on Vulkan: the source image lives
// in a texture, each frame draws one textured quad covering the
// viewport (plus a scissored overlay draw when the menu is open) into
// an offscreen target, and the result is read back into the shm canvas.
//
// The GPU samples the full-resolution texture directly, so no CPU-side
// scaled frame is ever cached here.
type gpuBackend struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler

	quadBuf      hal.Buffer // static fullscreen quad, 6 vertices
	imageUniform hal.Buffer
	menuUniform  hal.Buffer

	srcTex    hal.Texture
	srcView   hal.TextureView
	imageBind hal.BindGroup

	colorTex  hal.Texture
	colorView hal.TextureView

	// src is the owned source image, retained for the single permitted
	// device recovery (the texture dies with the device).
	src  *pyramid.Buffer
	w, h int
}

func newGPU() (Backend, error) {
	b := &gpuBackend{}
	if err := b.initDevice(); err != nil {
		return nil, err
	}
	if err := b.createPipeline(); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *gpuBackend) Name() string { return BackendGPU }

// initDevice brings up a standalone Vulkan device for offscreen use.
func (b *gpuBackend) initDevice() error {
	hb, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("gpu: vulkan backend not available")
	}
	instance, err := hb.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}
	b.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		b.instance = nil
		return fmt.Errorf("gpu: no adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		b.instance = nil
		return fmt.Errorf("gpu: open device: %w", err)
	}
	b.device = openDev.Device
	b.queue = openDev.Queue
	slogger().Info("gpu: device initialized", "adapter", selected.Info.Name)
	return nil
}

// createPipeline compiles the quad shader and creates the render
// pipeline, sampler, static quad vertex buffer, and uniform buffers.
func (b *gpuBackend) createPipeline() error {
	shader, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "spin_quad_shader",
		Source: hal.ShaderSource{WGSL: quadShaderSource},
	})
	if err != nil {
		return fmt.Errorf("gpu: compile quad shader: %w", err)
	}
	b.shader = shader

	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "spin_quad_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group layout: %w", err)
	}
	b.bindLayout = bindLayout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "spin_quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout

	sampler, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "spin_quad_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("gpu: create sampler: %w", err)
	}
	b.sampler = sampler

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "spin_quad_pipeline",
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline: %w", err)
	}
	b.pipeline = pipeline

	quadBuf, err := b.createAndUploadBuffer("spin_quad_verts",
		quadVertexData(-1, 1, 1, -1), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	b.quadBuf = quadBuf

	imageUniform, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "spin_image_uniform",
		Size:  quadUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create image uniform: %w", err)
	}
	b.imageUniform = imageUniform

	menuUniform, err := b.createAndUploadBuffer("spin_menu_uniform",
		uniformData(1.0), gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	b.menuUniform = menuUniform

	return nil
}

// SetSource uploads the decoded image to a texture in bounded row-band
// chunks. Ownership of src transfers to the backend; it is retained only
// to survive the single permitted device recovery.
func (b *gpuBackend) SetSource(src *pyramid.Buffer) error {
	if src == nil || src.W <= 0 || src.H <= 0 {
		return ErrNoSource
	}
	b.src = src
	if err := b.uploadSource(); err != nil {
		return err
	}
	slogger().Debug("gpu: source uploaded", "w", src.W, "h", src.H)
	return nil
}

// uploadSource (re)creates the source texture from b.src and binds it.
func (b *gpuBackend) uploadSource() error {
	b.destroySourceTexture()

	w, h := uint32(b.src.W), uint32(b.src.H)
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "spin_source",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create source texture: %w", err)
	}
	b.srcTex = tex

	for y := uint32(0); y < h; y += uploadChunkRows {
		rows := uint32(uploadChunkRows)
		if y+rows > h {
			rows = h - y
		}
		band := b.src.Pix[y*w*4 : (y+rows)*w*4]
		b.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   hal.Origin3D{X: 0, Y: y, Z: 0},
			},
			band,
			&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: rows},
			&hal.Extent3D{Width: w, Height: rows, DepthOrArrayLayers: 1},
		)
	}

	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "spin_source_view",
	})
	if err != nil {
		return fmt.Errorf("gpu: create source view: %w", err)
	}
	b.srcView = view

	bind, err := b.createQuadBindGroup("spin_image_bind", b.imageUniform, view)
	if err != nil {
		return err
	}
	b.imageBind = bind
	return nil
}

// Resize recreates the offscreen color target for the new surface size.
// No resampling happens here; the quad draw on the next Present scales.
func (b *gpuBackend) Resize(w, h int) error {
	if w == b.w && h == b.h && b.colorTex != nil {
		return nil
	}
	b.destroyColorTarget()

	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "spin_color",
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("gpu: create color target: %w", err)
	}
	b.colorTex = tex

	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "spin_color_view",
	})
	if err != nil {
		b.destroyColorTarget()
		return fmt.Errorf("gpu: create color view: %w", err)
	}
	b.colorView = view
	b.w, b.h = w, h
	return nil
}

// Present renders one frame and reads it back into canvas. A failure
// triggers exactly one device reinitialization; failing again returns
// ErrBackendLost.
func (b *gpuBackend) Present(canvas []byte, p Params, overlay *menu.Overlay) error {
	if b.src == nil || b.imageBind == nil {
		return ErrNoSource
	}
	if len(canvas) < b.w*b.h*4 {
		return ErrCanvasTooSmall
	}
	if p.Opacity < 0 {
		p.Opacity = 0
	} else if p.Opacity > 1 {
		p.Opacity = 1
	}

	err := b.presentFrame(canvas, p, overlay)
	if err == nil {
		return nil
	}
	slogger().Warn("gpu: present failed, reinitializing device", "error", err)
	if rerr := b.reinit(); rerr != nil {
		return fmt.Errorf("%w: reinit: %v", ErrBackendLost, rerr)
	}
	if err := b.presentFrame(canvas, p, overlay); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendLost, err)
	}
	return nil
}

// reinit tears down all GPU state and rebuilds device, pipeline, source
// texture, and color target.
func (b *gpuBackend) reinit() error {
	src, w, h := b.src, b.w, b.h
	b.Close()
	b.src = src

	if err := b.initDevice(); err != nil {
		return err
	}
	if err := b.createPipeline(); err != nil {
		return err
	}
	if err := b.uploadSource(); err != nil {
		return err
	}
	return b.Resize(w, h)
}

func (b *gpuBackend) presentFrame(canvas []byte, p Params, overlay *menu.Overlay) error {
	w, h := uint32(b.w), uint32(b.h)

	b.queue.WriteBuffer(b.imageUniform, 0, uniformData(float32(p.Opacity)))

	// Per-frame overlay resources, destroyed after the fence wait.
	var (
		menuTex  hal.Texture
		menuView hal.TextureView
		menuBind hal.BindGroup
		menuBuf  hal.Buffer
	)
	defer func() {
		if menuBind != nil {
			b.device.DestroyBindGroup(menuBind)
		}
		if menuView != nil {
			b.device.DestroyTextureView(menuView)
		}
		if menuTex != nil {
			b.device.DestroyTexture(menuTex)
		}
		if menuBuf != nil {
			b.device.DestroyBuffer(menuBuf)
		}
	}()
	if overlay != nil {
		var err error
		menuTex, menuView, menuBind, menuBuf, err = b.buildMenuResources(overlay)
		if err != nil {
			return err
		}
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "spin_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("spin_frame"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "spin_frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       b.colorView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(b.pipeline)
	rp.SetBindGroup(0, b.imageBind, nil)
	rp.SetVertexBuffer(0, b.quadBuf, 0)
	rp.Draw(6, 1, 0, 0)

	if overlay != nil {
		// Restrict the overlay draw to the menu rect so only that
		// sub-region is touched.
		sx, sy, sw, sh := clipRect(overlay.X, overlay.Y, overlay.Buf.W, overlay.Buf.H, b.w, b.h)
		if sw > 0 && sh > 0 {
			rp.SetScissorRect(uint32(sx), uint32(sy), uint32(sw), uint32(sh))
			rp.SetPipeline(b.pipeline)
			rp.SetBindGroup(0, menuBind, nil)
			rp.SetVertexBuffer(0, menuBuf, 0)
			rp.Draw(6, 1, 0, 0)
		}
	}
	rp.End()

	// The copy below needs the target in copy-source usage; transition
	// back afterwards so the next frame's pass sees a render target.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "spin_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(b.colorTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: b.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := b.device.Wait(fence, 1, gpuWaitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("gpu: wait: ok=%v err=%v", fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := b.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("gpu: readback: %w", err)
	}

	// Strip row padding. Texture format is BGRA8, the canvas byte order,
	// so no channel conversion is needed.
	if alignedBytesPerRow == bytesPerRow {
		copy(canvas[:int(bytesPerRow)*int(h)], readback)
	} else {
		for row := uint32(0); row < h; row++ {
			src := readback[row*alignedBytesPerRow : row*alignedBytesPerRow+bytesPerRow]
			copy(canvas[row*bytesPerRow:(row+1)*bytesPerRow], src)
		}
	}
	return nil
}

// buildMenuResources uploads the overlay buffer as a small texture and
// builds the per-frame bind group and quad covering its rect.
func (b *gpuBackend) buildMenuResources(ov *menu.Overlay) (hal.Texture, hal.TextureView, hal.BindGroup, hal.Buffer, error) {
	mw, mh := uint32(ov.Buf.W), uint32(ov.Buf.H)
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "spin_menu",
		Size:          hal.Extent3D{Width: mw, Height: mh, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("gpu: create menu texture: %w", err)
	}
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		ov.Buf.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: mw * 4, RowsPerImage: mh},
		&hal.Extent3D{Width: mw, Height: mh, DepthOrArrayLayers: 1},
	)

	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "spin_menu_view",
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, nil, nil, nil, fmt.Errorf("gpu: create menu view: %w", err)
	}

	bind, err := b.createQuadBindGroup("spin_menu_bind", b.menuUniform, view)
	if err != nil {
		b.device.DestroyTextureView(view)
		b.device.DestroyTexture(tex)
		return nil, nil, nil, nil, err
	}

	// Menu rect in clip space, y down.
	x0 := 2*float32(ov.X)/float32(b.w) - 1
	x1 := 2*float32(ov.X+ov.Buf.W)/float32(b.w) - 1
	y0 := 1 - 2*float32(ov.Y)/float32(b.h)
	y1 := 1 - 2*float32(ov.Y+ov.Buf.H)/float32(b.h)
	buf, err := b.createAndUploadBuffer("spin_menu_verts",
		quadVertexData(x0, y0, x1, y1), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		b.device.DestroyBindGroup(bind)
		b.device.DestroyTextureView(view)
		b.device.DestroyTexture(tex)
		return nil, nil, nil, nil, err
	}
	return tex, view, bind, buf, nil
}

func (b *gpuBackend) createQuadBindGroup(label string, uniform hal.Buffer, view hal.TextureView) (hal.BindGroup, error) {
	bind, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: b.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniform.NativeHandle(), Offset: 0, Size: quadUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: b.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create bind group %s: %w", label, err)
	}
	return bind, nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (b *gpuBackend) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *gpuBackend) destroySourceTexture() {
	if b.imageBind != nil {
		b.device.DestroyBindGroup(b.imageBind)
		b.imageBind = nil
	}
	if b.srcView != nil {
		b.device.DestroyTextureView(b.srcView)
		b.srcView = nil
	}
	if b.srcTex != nil {
		b.device.DestroyTexture(b.srcTex)
		b.srcTex = nil
	}
}

func (b *gpuBackend) destroyColorTarget() {
	if b.colorView != nil {
		b.device.DestroyTextureView(b.colorView)
		b.colorView = nil
	}
	if b.colorTex != nil {
		b.device.DestroyTexture(b.colorTex)
		b.colorTex = nil
	}
	b.w, b.h = 0, 0
}

// Invalidate is a no-op: the GPU path resamples on the device every
// frame and keeps no scaled-frame cache.
func (b *gpuBackend) Invalidate() {}

// Close releases all GPU resources in reverse creation order. Safe to
// call multiple times.
func (b *gpuBackend) Close() {
	if b.device != nil {
		b.destroyColorTarget()
		b.destroySourceTexture()
		if b.menuUniform != nil {
			b.device.DestroyBuffer(b.menuUniform)
			b.menuUniform = nil
		}
		if b.imageUniform != nil {
			b.device.DestroyBuffer(b.imageUniform)
			b.imageUniform = nil
		}
		if b.quadBuf != nil {
			b.device.DestroyBuffer(b.quadBuf)
			b.quadBuf = nil
		}
		if b.pipeline != nil {
			b.device.DestroyRenderPipeline(b.pipeline)
			b.pipeline = nil
		}
		if b.sampler != nil {
			b.device.DestroySampler(b.sampler)
			b.sampler = nil
		}
		if b.pipeLayout != nil {
			b.device.DestroyPipelineLayout(b.pipeLayout)
			b.pipeLayout = nil
		}
		if b.bindLayout != nil {
			b.device.DestroyBindGroupLayout(b.bindLayout)
			b.bindLayout = nil
		}
		if b.shader != nil {
			b.device.DestroyShaderModule(b.shader)
			b.shader = nil
		}
		b.device.Destroy()
		b.device = nil
		b.queue = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.src = nil
}

// clipRect clamps a rect to the target bounds.
func clipRect(x, y, w, h, maxW, maxH int) (int, int, int, int) {
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > maxW {
		w = maxW - x
	}
	if y+h > maxH {
		h = maxH - y
	}
	return x, y, w, h
}
