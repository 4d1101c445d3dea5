// Command nfcrx supervises an NFC capture: it drives the radio receiver
// and protocol decoder tasks to a running, configured state and streams
// decoded frames to stdout. Logging goes to stderr and is enabled with
// -v.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nfclab/nfcrx/internal/config"
	"github.com/nfclab/nfcrx/internal/logging"
	"github.com/nfclab/nfcrx/internal/rt"
	"github.com/nfclab/nfcrx/internal/supervisor"
	"github.com/nfclab/nfcrx/internal/task/sim"
)

var protocols = []string{"nfca", "nfcb", "nfcf", "nfcv"}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log := logging.New(os.Stderr, logging.LevelNone)

	profiles := config.ReceiverDefaults()
	decoder := config.DecoderDefaults()
	var limit time.Duration

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v":
			log.Raise()

		case "-d":
			decoder["debugEnabled"] = config.Bool(true)

		case "-p":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Missing value for 'p' argument")
				printUsage()
				return 1
			}
			for _, proto := range protocols {
				enabled := strings.Contains(args[i], proto)
				decoder[proto] = config.Sub(config.Tree{"enabled": config.Bool(enabled)})
			}

		case "-t":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Missing value for 't' argument")
				printUsage()
				return 1
			}
			secs, err := strconv.Atoi(args[i])
			if err != nil {
				fmt.Fprintln(os.Stderr, "Invalid value for 't' argument")
				printUsage()
				return 1
			}
			if secs > 0 {
				limit = time.Duration(secs) * time.Second
			}

		case "-c":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "Missing value for 'c' argument")
				printUsage()
				return 1
			}
			loaded, err := config.LoadProfiles(args[i])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid profile file: %v\n", err)
				return 1
			}
			profiles = loaded

		case "-h", "--help":
			printUsage()
			return 0

		default:
			fmt.Fprintf(os.Stderr, "Unknown option '%s'\n", args[i])
			printUsage()
			return 1
		}
	}

	log.Infof("main", "nfcrx capture supervisor starting")

	bus := rt.NewBus(256)
	defer bus.Close()
	exec := rt.NewExecutor(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lc := supervisor.NewLifecycle(exec.Stop, cancel)

	// Capture tasks. This build ships the simulated pair; a hardware
	// backend plugs in here with the same topics and commands.
	exec.Submit(sim.NewReceiver(bus, log, sim.ReceiverConfig{Identity: "radio.airspy://0"}))
	exec.Submit(sim.NewDecoder(bus, log, sim.DecoderConfig{Script: sim.DemoScript()}))

	// One shutdown request per signal delivery; repeats are absorbed by
	// the lifecycle controller.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for sig := range sigCh {
			fmt.Fprintf(os.Stderr, "Terminate on signal %v\n", sig)
			lc.RequestShutdown()
		}
	}()

	sup := supervisor.New(bus, lc, log, supervisor.Config{
		Profiles: profiles,
		Decoder:  decoder,
		Limit:    limit,
		Out:      os.Stdout,
	})
	_ = sup.Run(ctx)

	exec.Shutdown()
	log.Infof("main", "capture finished")
	return 0
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: nfcrx [-v] [-d] [-p nfca,nfcb,nfcf,nfcv] [-t nsecs] [-c profiles.yaml]")
	fmt.Fprintln(os.Stderr, "\tv: verbose mode, write logging information to stderr (repeat for more detail)")
	fmt.Fprintln(os.Stderr, "\td: debug mode, capture raw decoder signals (heavily affects performance)")
	fmt.Fprintln(os.Stderr, "\tp: enable protocols, by default all are enabled")
	fmt.Fprintln(os.Stderr, "\tt: stop capture after the given number of seconds")
	fmt.Fprintln(os.Stderr, "\tc: load receiver device profiles from a YAML file")
}
