// This file is part of zxfleet.
//
// zxfleet is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// zxfleet is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with zxfleet.  If not, see <https://www.gnu.org/licenses/>.

// Package main wires the fleet together and runs its control plane. The
// shutdown coordination (an interrupt handler racing the server's own
// error channel, both converging on one "stop and wait" path) is
// grounded on the teacher's main()/launch() split in gopher2600.go: there
// a goroutine runs the program and reports back over a mainSync
// instance while the main goroutine services ctrl-c and GUI-creation
// requests; here the server runs in its own goroutine and the main
// goroutine's only job is to wait for either an interrupt or the server
// reporting that it is done.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/zxfleet/core/batch"
	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/cpufacade"
	"github.com/zxfleet/core/cpustub"
	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/logger"
	"github.com/zxfleet/core/manager"
	"github.com/zxfleet/core/memory"
	"github.com/zxfleet/core/webapi"
)

// eventBusCapacity is the per-subscriber buffer depth for the
// process-wide event bus (spec §5: publish never blocks on a slow
// subscriber).
const eventBusCapacity = 64

func main() {
	var configPath string
	flgs := flag.NewFlagSet("zxfleet", flag.ExitOnError)
	flgs.StringVar(&configPath, "config", "", "path to a zxfleet.toml configuration file")
	if err := flgs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	settings, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zxfleet: failed to load config %q: %s\n", configPath, err)
		os.Exit(1)
	}

	logger.Logf("zxfleet", "starting control plane, listen=%s pool=%d", settings.ListenAddr, settings.BatchPoolSize)
	logger.Logf("zxfleet", "number of cores available: %d", runtime.NumCPU())

	bus := events.NewBus(eventBusCapacity)
	mgr := manager.New(bus, stubHardware)
	dispatcher := batch.New(mgr, bus, settings.BatchPoolSize, webapi.DefaultExecutor)
	server := webapi.New(mgr, dispatcher, bus)

	// interrupt handling mirrors the teacher's ctrl-c default: a single
	// os.Interrupt channel that tells the run loop to unwind.
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	stop := make(chan struct{})
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ProbeAndServe(stop)
	}()

	select {
	case <-intChan:
		fmt.Println()
		logger.Logf("zxfleet", "interrupt received, shutting down")
		close(stop)
		<-serveErr
	case err := <-serveErr:
		if err != nil {
			fmt.Fprintf(os.Stderr, "zxfleet: %s\n", err)
			os.Exit(1)
		}
	}
}

// stubHardware is the manager.HardwareFactory this binary wires in. A
// cycle-exact Z80 execution engine is out of scope for this module (spec
// §1), so every instance runs on cpustub's no-op CPU/peripherals until a
// real engine is built behind the same cpufacade interfaces.
func stubHardware(model config.Model, mem *memory.Memory) (cpufacade.CPU, cpufacade.Peripherals) {
	return cpustub.New(), cpustub.NewPeripherals()
}
