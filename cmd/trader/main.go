package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/starlarkus/gblink-pokemon-web/pkg/data"
	"github.com/starlarkus/gblink-pokemon-web/pkg/pokemon"
	"github.com/starlarkus/gblink-pokemon-web/pkg/relay"
	"github.com/starlarkus/gblink-pokemon-web/pkg/serial"
	"github.com/starlarkus/gblink-pokemon-web/pkg/trader"
)

// sectionStarterByte is the Gen 1/2/3 party-section preamble byte (§4.6),
// used to watch for a cartridge stuck at a section boundary.
const sectionStarterByte = uint8(0xFD)

func main() {
	var (
		sockFile  = flag.String("sock", "/tmp/gb-serial.sock", "Unix socket the mock cartridge link listens on")
		device    = flag.String("device", "", "real serial device (e.g. /dev/ttyUSB0); overrides -sock when set")
		relayAddr = flag.String("relay", "127.0.0.1:9800", "peer relay server address")
		gen       = flag.Int("gen", 1, "cartridge generation: 1, 2, or 3")
		index     = flag.Int("index", 1, "tag-family channel index (X in BUFX/NEGX/...)")
		dataRoot  = flag.String("data", "data/rby", "static table directory (§6.1 layout) for the selected generation")
		logDir    = flag.String("logdir", "logs/client", "per-client byte-trace log directory prefix")
		japanese  = flag.Bool("japanese", false, "local cartridge is a Japanese-region cart (Gen 1/2 only, §4.5 Japanese handling)")
	)

	flag.Parse()

	generation := pokemon.Generation(*gen)

	if generation != pokemon.Gen1 && generation != pokemon.Gen2 && generation != pokemon.Gen3 {
		log.Fatalf("invalid -gen %d: must be 1, 2, or 3", *gen)
	}

	tables, err := data.Load(*dataRoot, generation)

	if err != nil {
		log.Printf("static tables: %s (sanity checks disabled)", err)
		tables = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interruptChan := make(chan os.Signal, 1)
	signal.Notify(interruptChan, syscall.SIGTERM, syscall.SIGINT)

	if *device != "" {
		runHardware(ctx, *device, *relayAddr, generation, uint8(*index), tables, *japanese, interruptChan)
		return
	}

	runMock(ctx, cancel, *sockFile, *relayAddr, generation, uint8(*index), tables, *logDir, *japanese, interruptChan)
}

// runMock serves the Unix-socket cartridge link the teacher's test harness
// speaks, accepting any number of connections and mediating one trade per
// client (§C1 "Byte Link", development/testing transport).
func runMock(ctx context.Context, cancel context.CancelFunc, sockFile, relayAddr string, gen pokemon.Generation, index uint8, tables *data.StaticTables, logDir string, japanese bool, interruptChan chan os.Signal) {
	s := serial.NewServer(ctx)

	log.Println("starting server")

	if err := s.Listen(sockFile); err != nil {
		log.Fatal(err)
	}

	s.Start()

	log.Printf("listening on %s ...", sockFile)

	for {
		select {
		case <-interruptChan:
			if err := s.Close(); err != nil {
				log.Println(err)
			}

			cancel()

			return
		case client := <-s.Accept():
			if err := serial.AddLoggerMiddleware(client, logDir); err != nil {
				log.Println(err)
				break
			}

			client.AddReadMiddleware(serial.NewSectionStarterCounter(client, sectionStarterByte).Middleware())

			peer, err := dialRelay(relayAddr)

			if err != nil {
				log.Printf("client %d: relay dial: %s", client.ID(), err)
				break
			}

			go trader.NewMediator(client, peer, gen, index, tables, japanese).Start()
		}
	}
}

// runHardware drives one real cartridge link over a serial/USB adapter
// (§C1 "Byte Link", production transport), running a single Mediator for
// as long as the link stays alive.
func runHardware(ctx context.Context, device, relayAddr string, gen pokemon.Generation, index uint8, tables *data.StaticTables, japanese bool, interruptChan chan os.Signal) {
	adapter, err := serial.OpenAdapter(device, gen == pokemon.Gen3)

	if err != nil {
		log.Fatalf("open %s: %s", device, err)
	}

	defer adapter.Close()

	peer, err := dialRelay(relayAddr)

	if err != nil {
		log.Fatalf("relay dial: %s", err)
	}

	m := trader.NewMediator(adapter, peer, gen, index, tables, japanese)

	done := make(chan struct{})

	go func() {
		m.Start()
		close(done)
	}()

	select {
	case <-interruptChan:
		m.Stop()
		<-done
	case <-done:
	case <-ctx.Done():
		m.Stop()
	}
}

func dialRelay(addr string) (*relay.Client, error) {
	conn, err := net.Dial("tcp", addr)

	if err != nil {
		return nil, err
	}

	return relay.New(conn), nil
}
