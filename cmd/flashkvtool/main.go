// Command flashkvtool is a CLI and HTTP inspector for a flashkv log. It
// runs against a simulated NOR-flash image file on disk (there being no
// real hardware target for this exercise), the way the teacher
// repository's GUI shipped a single binary wrapping its LSM engine;
// here the wrapping is a flag-driven CLI plus an optional web console
// instead of a desktop window.
package main

import (
	"fmt"
	"os"

	"flashkv/internal/flashlog"
	"flashkv/utils/config"

	"github.com/charmbracelet/log"
)

var logger = flashlog.New("cli")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Get()
	applyLogLevel(cfg.Log.Level)

	var err error
	switch os.Args[1] {
	case "write":
		err = runWrite(cfg, os.Args[2:])
	case "read":
		err = runRead(cfg, os.Args[2:])
	case "close":
		err = runClose(cfg, os.Args[2:])
	case "scan":
		err = runScan(cfg, os.Args[2:])
	case "erase":
		err = runErase(cfg, os.Args[2:])
	case "inspect":
		err = runInspect(cfg, os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "flashkvtool: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `flashkvtool - inspect and drive a flashkv log

Usage:
  flashkvtool write   -id N -image PATH DATA
  flashkvtool read    -id N -image PATH
  flashkvtool close   -id N -image PATH
  flashkvtool scan    -image PATH
  flashkvtool erase   -image PATH
  flashkvtool inspect -image PATH [-listen ADDR]`)
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		flashlog.SetLevel(log.DebugLevel)
	case "warn":
		flashlog.SetLevel(log.WarnLevel)
	case "error":
		flashlog.SetLevel(log.ErrorLevel)
	default:
		flashlog.SetLevel(log.InfoLevel)
	}
}
