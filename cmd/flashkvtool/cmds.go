package main

import (
	"errors"
	"flag"
	"fmt"

	"flashkv/store"
	"flashkv/utils/config"
)

func runWrite(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	id := fs.Uint64("id", 0, "record id")
	image := fs.String("image", "flashkv.img", "disk image path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 {
		return errors.New("flashkvtool write: expected exactly one DATA argument")
	}

	sess, err := openSession(cfg, *image)
	if err != nil {
		return err
	}

	if err := sess.handle.Write(*id, []byte(rest[0])); err != nil && !errors.Is(err, store.ErrEndOfMedium) {
		return err
	}
	logger.Info("wrote record", "id", *id, "bytes", len(rest[0]))
	return sess.persist()
}

func runRead(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	id := fs.Uint64("id", 0, "record id")
	image := fs.String("image", "flashkv.img", "disk image path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := openSession(cfg, *image)
	if err != nil {
		return err
	}

	size, err := sess.handle.Open(*id, store.OptFirstMatch, cfg.Store.EmptyPageLimit)
	if err != nil {
		return err
	}

	buf := make([]byte, size)
	if err := sess.handle.Read(0, size, buf); err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func runClose(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	id := fs.Uint64("id", 0, "record id")
	image := fs.String("image", "flashkv.img", "disk image path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := openSession(cfg, *image)
	if err != nil {
		return err
	}
	if err := sess.handle.Close(*id); err != nil {
		return err
	}
	logger.Info("closed handle", "id", *id)
	return sess.persist()
}

func runErase(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("erase", flag.ExitOnError)
	image := fs.String("image", "flashkv.img", "disk image path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := openSession(cfg, *image)
	if err != nil {
		return err
	}
	if err := sess.handle.EraseAll(); err != nil {
		return err
	}
	logger.Info("erased medium", "image", *image)
	return sess.persist()
}

func runScan(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	image := fs.String("image", "flashkv.img", "disk image path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := openSession(cfg, *image)
	if err != nil {
		return err
	}

	events, err := walkAll(sess)
	if err != nil {
		return err
	}
	printScanTable(events)
	return nil
}

// walkAll replays the log from the front with OptAnyID, collecting every
// record it finds in order. Used by both `scan` and the inspector's
// /records endpoint.
func walkAll(sess *session) ([]recordInfo, error) {
	var out []recordInfo
	h := sess.handle
	flags := store.OptAnyID | store.OptFirstMatch
	for {
		size, err := h.Open(0, flags, sess.geometry.Length/sess.geometry.PageSize)
		if err != nil {
			break
		}
		out = append(out, recordInfo{
			ID:   h.GetFoundID(),
			Addr: h.GetCurrentAddr(),
			Size: size,
		})
		flags = store.OptFromCurrentPos | store.OptNext | store.OptAnyID | store.OptFirstMatch
	}
	return out, nil
}

type recordInfo struct {
	ID   uint64 `json:"id"`
	Addr uint32 `json:"addr"`
	Size uint32 `json:"size"`
}
