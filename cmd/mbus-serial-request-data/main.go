// mbus-serial-request-data reads one meter over a serial M-Bus line and
// prints the reply as XML. By default it uses the vendor baud-switch
// readout (request at 2400 Bd, answer at 9600 Bd); with an explicit -b
// rate it performs a plain REQ_UD2 exchange at that rate.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"

	mbus "github.com/sraeck/libmbus"
)

const (
	requestBaud = 2400
	replyBaud   = 9600
)

func main() {
	debug := flag.Bool("d", false, "enable debug printout of raw frames")
	baud := flag.Int("b", 0, "baud rate for a plain request (skips the baud-switch variant)")
	configPath := flag.String("c", "", "optional TOML config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-d] [-b BAUDRATE] [-c CONFIG] device mbus-address\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: colorable.NewColorableStderr()}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)

	cfg := runConfig{Address: -1, Baud: *baud, Debug: *debug}
	if *configPath != "" {
		var err error
		cfg, err = loadRunConfig(*configPath, cfg)
		if err != nil {
			log.Error().Err(err).Msg("could not read config file")
			os.Exit(1)
		}
	}
	// Flags and positional arguments win over the config file.
	if *debug {
		cfg.Debug = true
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	switch flag.NArg() {
	case 0:
		if cfg.Device == "" || cfg.Address < 0 {
			flag.Usage()
			os.Exit(1)
		}
	case 2:
		cfg.Device = flag.Arg(0)
		addr, err := strconv.Atoi(flag.Arg(1))
		if err != nil || addr < 0 || addr > 255 {
			log.Error().Str("address", flag.Arg(1)).Msg("mbus-address must be 0..255")
			os.Exit(1)
		}
		cfg.Address = addr
	default:
		flag.Usage()
		os.Exit(1)
	}

	if cfg.Debug {
		log = log.Level(zerolog.DebugLevel)
	}

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("readout failed")
		os.Exit(1)
	}
}

func run(cfg runConfig, log zerolog.Logger) error {
	client := mbus.NewClient(cfg.Device)

	if cfg.Debug {
		client.SetDiagnosticHooks(
			func(raw []byte) { log.Debug().Str("bytes", fmt.Sprintf("% X", raw)).Msg("send") },
			func(raw []byte) { log.Debug().Str("bytes", fmt.Sprintf("% X", raw)).Msg("receive") },
		)
	}

	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Disconnect()

	address := byte(cfg.Address)
	var reply *mbus.Frame
	var err error
	if cfg.Baud != 0 {
		if err := client.SetBaudRate(cfg.Baud); err != nil {
			return err
		}
		log.Debug().Int("baud", cfg.Baud).Msg("plain request")
		reply, err = client.RequestData(address)
	} else {
		log.Debug().Int("request_baud", requestBaud).Int("reply_baud", replyBaud).Msg("baud-switch request")
		reply, err = client.RequestDataAtBaud(address, requestBaud, replyBaud)
	}
	if err != nil {
		return err
	}

	records, err := mbus.RawDecoder{}.Decode(reply)
	if err != nil {
		return err
	}
	out, err := XMLRenderer{}.Render(records)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
