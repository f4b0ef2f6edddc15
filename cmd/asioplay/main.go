// Command asioplay decodes a WAV or MP3 file and plays it through the
// asio package's Controller, using an in-process loopback driver in place
// of a real vendor ASIO binding. It mirrors the structure of a WAV-playing
// CLI built on a lower-level driver API — flag parsing, a decoder
// abstraction, a playback loop — retargeted at this module's Controller
// instead of directly at a kernel device.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sbooth/asioengine/asio"
)

func main() {
	var channels int
	flag.IntVar(&channels, "channels", 2, "output channels to negotiate")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <wav-or-mp3-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), channels); err != nil {
		fmt.Fprintf(os.Stderr, "asioplay: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, channels int) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var decoder audioDecoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		decoder, err = newWavDecoder(file)
	case ".mp3":
		decoder, err = newMp3Decoder(file)
	default:
		return fmt.Errorf("unrecognized file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("opening decoder: %w", err)
	}

	driver := newLoopbackDriver(channels)
	registry := asio.NewDriverRegistry(driver)
	chosen, err := registry.ByIndex(0)
	if err != nil {
		return err
	}

	controller := asio.New(chosen, nil)
	if err := controller.Open(); err != nil {
		return fmt.Errorf("opening driver: %w", err)
	}
	defer controller.Close()

	producer := newDecoderProducer(decoder, channels)
	go func() {
		if err := producer.decodeLoop(); err != nil {
			fmt.Fprintf(os.Stderr, "asioplay: decode error: %v\n", err)
		}
	}()

	cfg := asio.Config{
		PreferredBufferSize: 512,
		ChannelsPerFrame:    channels,
		SampleRate:          float64(decoder.SampleRate()),
	}
	if err := controller.SetupForDecoder(cfg, producer); err != nil {
		return fmt.Errorf("negotiating with driver: %w", err)
	}

	fmt.Println(controller.Negotiated().Summary())

	if err := controller.Start(); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}

	duration, err := decoder.Duration()
	if err != nil {
		return fmt.Errorf("determining duration: %w", err)
	}
	fmt.Printf("Playing %s (%v)...\n", path, duration)
	time.Sleep(duration)

	if err := controller.RequestStop(); err != nil && !errors.Is(err, asio.ErrStateViolation) {
		return fmt.Errorf("requesting stop: %w", err)
	}
	time.Sleep(300 * time.Millisecond)

	fmt.Println("Playback finished.")
	return nil
}
