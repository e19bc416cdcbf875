package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"iox/core"
	"iox/host/bench"
	"iox/host/config"
	"iox/host/monitor"
	"iox/host/serial"
	"iox/protocol"
)

var (
	configFile = flag.String("config", "iox.yaml", "Configuration file")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	setupLogging(cfg.Log)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "monitor":
		err = runMonitor(ctx, cfg, args[1:])
	case "bench":
		err = runBench(ctx, cfg, args[1:])
	case "ports":
		err = runPorts()
	case "pwm":
		err = runPWM(args[1:])
	case "decode":
		err = runDecode()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: iox-host [-config file] [-verbose] <command> [flags]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	fmt.Fprintln(os.Stderr, "  monitor   - Print telemetry from the board console")
	fmt.Fprintln(os.Stderr, "  bench     - Run the sensor cycle on host I2C and GPIO")
	fmt.Fprintln(os.Stderr, "  ports     - List serial ports")
	fmt.Fprintln(os.Stderr, "  pwm       - Show the slice timing for a frequency and duty")
	fmt.Fprintln(os.Stderr, "  decode    - Decode telemetry lines from stdin")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func setupLogging(lc config.LogConfig) {
	level := core.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = core.LevelDebug
	case "warn":
		level = core.LevelWarn
	case "error":
		level = core.LevelError
	}
	if *verbose {
		level = core.LevelDebug
	}
	core.SetLogLevel(level)
	core.SetDebugWriter(func(msg string) {
		log.Print(msg)
	})
}

func runMonitor(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	device := fs.String("device", cfg.Serial.Port, "Serial device path (empty picks a USB CDC port)")
	baud := fs.Int("baud", cfg.Serial.Baud, "Baud rate (ignored for USB CDC)")
	raw := fs.Bool("raw", false, "Print records as received")
	fs.Parse(args)

	if *device == "" {
		ports, err := serial.Ports()
		if err != nil {
			return err
		}
		p, ok := serial.Guess(ports)
		if !ok {
			return fmt.Errorf("no serial port found")
		}
		*device = p
	}

	sc := serial.DefaultConfig(*device)
	sc.Baud = *baud
	sc.ReadTimeout = 0
	port, err := serial.Open(sc)
	if err != nil {
		return err
	}
	defer port.Close()
	if err := port.Flush(); err != nil {
		log.Printf("Error flushing %s: %v", *device, err)
	}
	if cfg.Log.ShowDevice {
		log.Printf("Monitoring %s", *device)
	}

	// Closing the port unblocks the reader on cancel
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	m := monitor.New(port, 0)
	errc := make(chan error, 1)
	go func() { errc <- m.Run(ctx) }()

	for ev := range m.Events() {
		ts := ev.Time.Format("15:04:05.000")
		switch {
		case ev.Record == nil:
			fmt.Printf("%s  %s\n", ts, ev.Log)
		case *raw:
			fmt.Printf("%s  %s\n", ts, ev.Record.Encode())
		default:
			fmt.Printf("%s  %s\n", ts, monitor.Format(ev.Record))
		}
	}

	st := m.Stats()
	log.Printf("records=%d logs=%d bad_checksum=%d malformed=%d dropped=%d",
		st.Records, st.Logs, st.BadChecksum, st.Malformed, st.Dropped)
	if ctx.Err() != nil {
		return nil
	}
	return <-errc
}

func runBench(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	interval := fs.Duration("interval", cfg.Bench.Interval, "Time between sensor cycles")
	pulse := fs.Bool("pulse", false, "Pulse the JP2 outputs once per cycle")
	fs.Parse(args)

	b, err := bench.Open(cfg.Bench, cfg.Divider, cfg.NTC)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Printf("Error closing bench: %v", err)
		}
	}()

	return b.Run(ctx, *interval, func(m bench.Measurement) {
		os.Stdout.Write(b.Telemetry())
		if *verbose {
			fmt.Printf("# supply=%s r0=%s r1=%s t0=%s t1=%s cap=%.4fpF %s\n",
				m.Supply, m.Resistance[0], m.Resistance[1],
				m.Temperature[0], m.Temperature[1], m.Picofarads, m.CapStatus)
		}
		if *pulse {
			b.Pulse()
		}
	})
}

func runPorts() error {
	ports, err := serial.Ports()
	if err != nil {
		return err
	}
	guess, _ := serial.Guess(ports)
	for _, p := range ports {
		mark := " "
		if p == guess {
			mark = "*"
		}
		fmt.Printf("%s %s\n", mark, p)
	}
	return nil
}

func runPWM(args []string) error {
	fs := flag.NewFlagSet("pwm", flag.ExitOnError)
	freq := fs.Uint("freq", 10000, "Frequency in Hz")
	dutyA := fs.Float64("a", 20, "Channel A duty in percent")
	dutyB := fs.Float64("b", 20, "Channel B duty in percent")
	phase := fs.Bool("phase-correct", false, "Up-down counting")
	fs.Parse(args)

	if *freq == 0 || *freq > core.ReferenceClockHz {
		return fmt.Errorf("frequency must be between 1 and %d Hz", core.ReferenceClockHz)
	}
	t := core.QuantizePWM(uint32(*freq), float32(*dutyA), float32(*dutyB), *phase)
	fmt.Printf("divider=%d top=%d compare_a=%d compare_b=%d actual=%dHz\n",
		t.Divider, t.Top, t.CompareA, t.CompareB, t.ActualFrequency())
	return nil
}

func runDecode() error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if !protocol.IsRecord(line) {
			continue
		}
		rec, err := protocol.Decode(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v: %q\n", err, line)
			continue
		}
		fmt.Println(monitor.Format(rec))
	}
	return scanner.Err()
}
