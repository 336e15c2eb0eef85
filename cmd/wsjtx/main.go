package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	wsjtxbridge "github.com/signalhouse/wsjtx-bridge"
	"github.com/signalhouse/wsjtx-bridge/audio"
	"github.com/signalhouse/wsjtx-bridge/modes"
)

func main() {
	var (
		libPath     = flag.String("lib", "", "Path to engine library (default: next to executable)")
		configPath  = flag.String("config", "", "Path to YAML config file")
		modeName    = flag.String("mode", "FT8", "Transmission mode")
		message     = flag.String("msg", "", "Message text to encode")
		wavIn       = flag.String("wav", "", "WAV file to decode")
		wavOut      = flag.String("out", "", "WAV file to write encoded audio to")
		freq        = flag.Int("freq", 1500, "Audio frequency in Hz")
		threads     = flag.Int("threads", 1, "Decoder threads (1-16)")
		list        = flag.Bool("list", false, "List supported modes and exit")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if !*list && !*interactive && *message == "" && *wavIn == "" {
		fmt.Fprintln(os.Stderr, "Usage: wsjtx -msg <text> [-mode FT8] [-freq 1500] [-out file.wav]")
		fmt.Fprintln(os.Stderr, "       wsjtx -wav <file.wav> [-mode FT8] [-threads 4]")
		fmt.Fprintln(os.Stderr, "       wsjtx -list")
		fmt.Fprintln(os.Stderr, "       wsjtx -i  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Only flags the user actually set may override the config file;
	// flag defaults must not stomp file values.
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	cfg.merge(setFlags, *libPath, *modeName, *freq, *threads)

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *message, *wavIn, *wavOut, *list, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config, message, wavIn, wavOut string, listOnly, verbose bool) error {
	if listOnly {
		printModes()
		return nil
	}

	mode, ok := modes.Parse(cfg.Mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	logger := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = dev
	}

	lib, err := wsjtxbridge.Open(wsjtxbridge.Config{
		LibraryPath: cfg.LibraryPath,
		Threads:     cfg.Threads,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer lib.Close()

	if wavIn != "" {
		return decodeFile(lib, mode, wavIn, cfg)
	}
	return encodeMessage(lib, mode, message, wavOut, cfg)
}

func decodeFile(lib *wsjtxbridge.Lib, mode modes.Mode, path string, cfg *config) error {
	samples, rate, err := readWAV(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if want := lib.SampleRate(mode); rate != want {
		fmt.Printf("Warning: %s expects %d Hz, file is %d Hz\n", mode, want, rate)
	}

	fmt.Printf("Decoding %s: %d samples (%.1f s) as %s\n",
		path, len(samples), float64(len(samples))/float64(rate), mode)

	start := time.Now()
	ch, err := lib.Decode(audio.FromInt16(samples), mode, cfg.FrequencyHz, cfg.Threads)
	if err != nil {
		return err
	}
	res := <-ch
	if res.Err != nil {
		return res.Err
	}
	if !res.Status.OK() {
		return fmt.Errorf("decode failed: %v", res.Status)
	}

	msgs := lib.PullMessages()
	fmt.Printf("Found %d message(s) in %v\n\n", len(msgs), time.Since(start).Round(time.Millisecond))
	for _, m := range msgs {
		fmt.Printf("%02d%02d%02d %3d %4.1f %5d ~ %s\n",
			m.Hour, m.Minute, m.Second, m.SNR, m.DeltaTime, m.DeltaFrequency, m.Text)
	}
	return nil
}

func encodeMessage(lib *wsjtxbridge.Lib, mode modes.Mode, message, wavOut string, cfg *config) error {
	fmt.Printf("Encoding %q as %s at %d Hz\n", message, mode, cfg.FrequencyHz)

	ch, err := lib.Encode(mode, message, cfg.FrequencyHz)
	if err != nil {
		return err
	}
	res := <-ch
	if res.Err != nil {
		return res.Err
	}
	if !res.Status.OK() {
		return fmt.Errorf("encode failed: %v", res.Status)
	}

	rate := lib.SampleRate(mode)
	fmt.Printf("Produced %d samples (%.1f s at %d Hz)\n",
		len(res.Samples), float64(len(res.Samples))/float64(rate), rate)

	if wavOut == "" {
		return nil
	}

	conv := <-lib.Convert(audio.FromFloat32(res.Samples), audio.FormatInt16)
	if conv.Err != nil {
		return conv.Err
	}
	if err := writeWAV(wavOut, conv.Buffer.Int16, rate); err != nil {
		return fmt.Errorf("write %s: %w", wavOut, err)
	}
	fmt.Printf("Wrote %s\n", wavOut)
	return nil
}

func printModes() {
	fmt.Println("Supported modes:")
	for _, m := range modes.All() {
		var caps []string
		if modes.EncodingSupported(m) {
			caps = append(caps, "encode")
		}
		if modes.DecodingSupported(m) {
			caps = append(caps, "decode")
		}
		fmt.Printf("  %-6s %6d Hz  %6.1f s  %s\n",
			m, modes.SampleRate(m), modes.Duration(m), strings.Join(caps, "+"))
	}
}
