package wayland

import (
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"golang.org/x/sys/unix"
)

// slotCount is the number of shm buffer slots. Two slots let the next
// frame render while the compositor still reads the previous one.
const slotCount = 2

type shmSlot struct {
	buffer *client.Buffer
	busy   bool
}

// shmPool is a double-buffered wl_shm pool backed by a memfd mapping.
// All slots share one mapping; each frame renders into a free slot and
// the slot stays busy until the compositor releases its wl_buffer.
type shmPool struct {
	pool *client.ShmPool
	fd   int
	data []byte

	w, h  int
	slots [slotCount]shmSlot
}

func newShmPool(shm *client.Shm, w, h int) (*shmPool, error) {
	stride := w * 4
	slotSize := stride * h
	size := slotSize * slotCount

	fd, err := unix.MemfdCreate("spin-shm", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("wayland: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("wayland: ftruncate shm pool: %w", err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("wayland: mmap shm pool: %w", err)
	}

	pool, err := shm.CreatePool(fd, int32(size))
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("wayland: create shm pool: %w", err)
	}

	p := &shmPool{pool: pool, fd: fd, data: data, w: w, h: h}
	for i := range p.slots {
		buf, err := pool.CreateBuffer(
			int32(i*slotSize), int32(w), int32(h), int32(stride),
			uint32(client.ShmFormatArgb8888))
		if err != nil {
			p.destroy()
			return nil, fmt.Errorf("wayland: create shm buffer: %w", err)
		}
		slot := &p.slots[i]
		slot.buffer = buf
		buf.SetReleaseHandler(func(client.BufferReleaseEvent) {
			slot.busy = false
		})
	}
	slogger().Debug("shm pool created", "w", w, "h", h, "slots", slotCount)
	return p, nil
}

// acquire returns a free wl_buffer and its pixel span, marking the slot
// busy until the compositor releases it.
func (p *shmPool) acquire() (*client.Buffer, []byte, bool) {
	slotSize := p.w * p.h * 4
	for i := range p.slots {
		if p.slots[i].busy {
			continue
		}
		p.slots[i].busy = true
		canvas := p.data[i*slotSize : (i+1)*slotSize]
		return p.slots[i].buffer, canvas, true
	}
	return nil, nil, false
}

// release frees a slot acquired but never attached, when rendering into
// it failed and no wl_buffer.release will ever arrive.
func (p *shmPool) release(buffer *client.Buffer) {
	for i := range p.slots {
		if p.slots[i].buffer == buffer {
			p.slots[i].busy = false
			return
		}
	}
}

func (p *shmPool) destroy() {
	for i := range p.slots {
		if p.slots[i].buffer != nil {
			p.slots[i].buffer.Destroy()
			p.slots[i].buffer = nil
		}
	}
	if p.pool != nil {
		p.pool.Destroy()
		p.pool = nil
	}
	if p.data != nil {
		unix.Munmap(p.data)
		p.data = nil
	}
	if p.fd >= 0 {
		unix.Close(p.fd)
		p.fd = -1
	}
}
