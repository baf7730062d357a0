package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/nvim-tools/nvrpc/pkg/log"
	"github.com/nvim-tools/nvrpc/pkg/rpc"
	"github.com/nvim-tools/nvrpc/pkg/rpc/tcp"
	"github.com/nvim-tools/nvrpc/pkg/rpc/unix"
)

var (
	socket  string
	address string
	verbose bool
)

func main() {

	flag.StringVar(&socket, "socket", "", "Path to the peer's unix socket (e.g. $NVIM)")
	flag.StringVar(&address, "address", "", "host:port of the peer's TCP listener")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")

	flag.Parse()

	red := color.New(color.FgRed, color.Bold).SprintFunc()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	var transport rpc.ClientTransport
	switch {
	case socket != "":
		transport = unix.NewClientTransport(unix.ClientTransportConfig{SocketPath: socket})
	case address != "":
		transport = tcp.NewClientTransport(tcp.ClientTransportConfig{Address: address})
	default:
		os.Stderr.WriteString("No peer given, set one with `--socket=\"<path>\"` or `--address=\"<host:port>\"`\n")
		os.Exit(1)
	}

	level := log.LevelWarn
	if verbose {
		level = log.LevelDebug
	}

	client := rpc.NewClient(rpc.ClientConfig{
		Transport: transport,
		Name:      "nvrpc-info",
		Version:   rpc.Version{Major: 0, Minor: 1, Patch: 0},
		Logger:    log.New(log.Config{Level: level}),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		os.Stderr.WriteString(red("ERROR: ") + fmt.Sprintf("Failed to connect: %v\n", err))
		os.Exit(1)
	}
	defer client.Close()

	info := client.APIInfo()

	fmt.Printf("%s channel %s\n", green("connected:"), cyan(fmt.Sprintf("%d", client.Channel())))
	fmt.Printf("%s\n", green("remote object kinds:"))
	for name, code := range info.Types {
		fmt.Printf("  %s (ext code %d)\n", cyan(name), code)
	}

	if functions, ok := info.Metadata["functions"].([]any); ok {
		fmt.Printf("%s %d\n", green("api functions:"), len(functions))
	}
}
