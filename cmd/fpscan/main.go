// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

// fpscan is a small diagnostic tool for a GT-511C3 fingerprint scanner
// attached to a serial port.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/serialperiph/go-gt511c3/gt511c3"
)

type Options struct {
	Port    string `short:"p" long:"port" required:"yes" description:"Serial port address (e.g. /dev/ttyUSB0, COM3)"`
	Baud    int    `short:"b" long:"baud" default:"0" description:"Operating baud rate to switch to after the handshake (0 keeps 9600)"`
	Timeout uint   `short:"t" long:"timeout" default:"5" description:"Response timeout, seconds"`

	Led      string `long:"led" choice:"on" choice:"off" description:"Switch the CMOS LED backlight"`
	Count    bool   `long:"count" description:"Print the number of enrolled fingerprints"`
	Capture  bool   `long:"capture" description:"Capture a fingerprint (LED must be on)"`
	Identify bool   `long:"identify" description:"Capture and identify against the database"`
	Image    string `long:"image" description:"Capture and save the fingerprint image to the given file"`
	Delete   int    `long:"delete" default:"-1" description:"Delete the template with the given ID"`

	Debug []bool `short:"D" long:"debug" description:"Debug mode, print protocol frames"`
}

func mainfunction() int {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		return 1
	}

	logger := zap.NewNop()
	if len(opts.Debug) > 0 {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return 1
		}
		logger = l
	}
	defer logger.Sync()

	cfg := gt511c3.DefaultConfig()
	cfg.Serial.Address = opts.Port
	cfg.ResponseTimeout = time.Duration(opts.Timeout) * time.Second

	option := gt511c3.NewOption().
		SetConfig(cfg).
		SetOperatingBaud(opts.Baud).
		SetLogger(logger)

	client, err := gt511c3.Dial(option)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return 1
	}

	ctx := context.Background()
	info, err := client.Open(ctx)
	if err != nil {
		fmt.Printf("ERROR: open: %s\n", err)
		return 1
	}
	defer client.Close(ctx)
	fmt.Printf("scanner open: %s\n", info)

	if opts.Led != "" {
		if err := client.CmosLed(ctx, opts.Led == "on"); err != nil {
			fmt.Printf("ERROR: led: %s\n", err)
			return 1
		}
	}

	if opts.Count {
		n, err := client.GetEnrollCount(ctx)
		if err != nil {
			fmt.Printf("ERROR: count: %s\n", err)
			return 1
		}
		fmt.Printf("enrolled fingerprints: %d\n", n)
	}

	if opts.Delete >= 0 {
		if err := client.DeleteID(ctx, uint32(opts.Delete)); err != nil {
			fmt.Printf("ERROR: delete %d: %s\n", opts.Delete, err)
			return 1
		}
		fmt.Printf("deleted template %d\n", opts.Delete)
	}

	if opts.Capture || opts.Identify || opts.Image != "" {
		if err := client.CmosLed(ctx, true); err != nil {
			fmt.Printf("ERROR: led: %s\n", err)
			return 1
		}
		if err := client.CaptureFinger(ctx, false); err != nil {
			fmt.Printf("ERROR: capture: %s\n", err)
			return 1
		}
		fmt.Println("fingerprint captured")
	}

	if opts.Identify {
		id, err := client.Identify(ctx)
		if err != nil {
			if gt511c3.KindOf(err) == gt511c3.KindAccessDenied {
				fmt.Println("no match")
			} else {
				fmt.Printf("ERROR: identify: %s\n", err)
				return 1
			}
		} else {
			fmt.Printf("matched template %d\n", id)
		}
	}

	if opts.Image != "" {
		img, err := client.GetImage(ctx)
		if err != nil {
			fmt.Printf("ERROR: image: %s\n", err)
			return 1
		}
		if err := os.WriteFile(opts.Image, img, 0o644); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return 1
		}
		fmt.Printf("wrote %d bytes to %s\n", len(img), opts.Image)
	}

	return 0
}

func main() {
	os.Exit(mainfunction())
}
