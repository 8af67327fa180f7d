package main

import (
	"os"

	"github.com/pkg/errors"

	"flashkv/internal/simflash"
	"flashkv/medium"
	"flashkv/store"
	"flashkv/utils/config"
)

// session binds a store.Handle to a simulated medium backed by an image
// file, so successive flashkvtool invocations see the same log.
type session struct {
	handle    *store.Handle
	disk      *simflash.Disk
	imagePath string
	geometry  medium.Geometry
}

func openSession(cfg *config.Config, imagePath string) (*session, error) {
	g := medium.Geometry{
		PageSize:   cfg.Geometry.PageSize,
		SectorSize: cfg.Geometry.SectorSize,
		Base:       cfg.Geometry.Base,
		Length:     cfg.Geometry.Length,
	}

	var disk *simflash.Disk
	data, err := os.ReadFile(imagePath)
	switch {
	case err == nil:
		if uint32(len(data)) != g.Length {
			return nil, errors.Errorf("flashkvtool: image %s is %d bytes, geometry wants %d", imagePath, len(data), g.Length)
		}
		disk = simflash.FromImage(data, g.SectorSize)
	case os.IsNotExist(err):
		disk = simflash.New(g.Length, g.SectorSize)
	default:
		return nil, errors.Wrap(err, "flashkvtool: read image")
	}

	h := store.New()
	flags := store.Flags(0)
	if cfg.Store.PageAlign {
		flags = store.PageAlign
	}
	if err := h.InitGeometry(g, make([]byte, g.PageSize), flags); err != nil {
		return nil, err
	}
	if err := h.InitCallbacks(disk.Callbacks()); err != nil {
		return nil, err
	}

	return &session{handle: h, disk: disk, imagePath: imagePath, geometry: g}, nil
}

// persist writes the simulated medium's current contents back to the
// image file, so the next invocation picks up where this one left off.
func (s *session) persist() error {
	return errors.Wrap(os.WriteFile(s.imagePath, s.disk.Image(), 0o644), "flashkvtool: write image")
}
