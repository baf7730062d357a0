package main

import (
	"fmt"
	"net"
	"os"

	"github.com/nvim-tools/nvrpc/pkg/rpc"
)

const (
	socketPath = "/tmp/nvrpc_fakepeer.sock"
)

// A minimal msgpack-RPC peer for exercising clients manually. It answers
// the handshake and a handful of methods over a unix socket, so
// `nvrpc-info --socket /tmp/nvrpc_fakepeer.sock` can run against it.

func apiInfoResult(channel int) []any {
	return []any{
		channel,
		map[string]any{
			"types": map[string]any{
				"Buffer":  map[string]any{"id": 0, "prefix": "nvim_buf_"},
				"Window":  map[string]any{"id": 1, "prefix": "nvim_win_"},
				"Tabpage": map[string]any{"id": 2, "prefix": "nvim_tabpage_"},
			},
			"error_types": map[string]any{
				"Exception":  map[string]any{"id": 0},
				"Validation": map[string]any{"id": 1},
			},
			"functions": []any{
				map[string]any{"name": "nvim_get_mode"},
				map[string]any{"name": "nvim_call_function"},
			},
		},
	}
}

func serve(conn net.Conn, channel int) {
	defer conn.Close()

	codec := rpc.NewCodec()
	decoder := codec.NewDecoder()
	buf := make([]byte, 4096)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			decoder.Feed(buf[:n])
			for {
				frame, ok, derr := decoder.Next()
				if derr != nil {
					fmt.Println("decode error:", derr)
					return
				}
				if !ok {
					break
				}
				handle(conn, codec, frame, channel)
			}
		}
		if err != nil {
			return
		}
	}
}

func handle(conn net.Conn, codec *rpc.Codec, frame *rpc.Frame, channel int) {
	switch frame.Type {
	case rpc.FrameNotification:
		fmt.Printf("notification %s %v\n", frame.Method, frame.Params)
	case rpc.FrameRequest:
		fmt.Printf("request %d %s %v\n", frame.ID, frame.Method, frame.Params)

		response := &rpc.Frame{Type: rpc.FrameResponse, ID: frame.ID}
		switch frame.Method {
		case "nvim_get_api_info":
			response.Result = apiInfoResult(channel)
		case "nvim_get_mode":
			response.Result = map[string]any{"mode": "n", "blocking": false}
		case "nvim_call_function":
			response.Result = 1
		default:
			response.Error = fmt.Sprintf("method not found: %s", frame.Method)
		}

		bs, err := codec.EncodeFrame(response)
		if err != nil {
			fmt.Println("encode error:", err)
			return
		}
		if _, err := conn.Write(bs); err != nil {
			fmt.Println("write error:", err)
		}
	}
}

func main() {
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer listener.Close()

	fmt.Println("Fake peer listening on", socketPath)

	channel := 0
	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Println(err)
			return
		}
		channel++
		go serve(conn, channel)
	}
}
