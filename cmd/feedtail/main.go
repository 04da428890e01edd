// feedtail connects to a running relay's /ws endpoint and prints the live
// price feed to the console.
// Usage: go run ./cmd/feedtail --url ws://localhost:8000/ws
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pricestream/relay/internal/model"
)

func main() {
	url := flag.String("url", "ws://localhost:8000/ws", "relay websocket endpoint")
	raw := flag.Bool("raw", false, "print raw message JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	logger.Info("connected - press Ctrl+C to stop", "url", *url)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				logger.Info("connection closed", "error", err)
				return
			}

			if *raw {
				fmt.Printf("%s\n", data)
				continue
			}

			var pt model.PricePoint
			if err := json.Unmarshal(data, &pt); err != nil {
				fmt.Printf("[RAW] %s\n", data)
				continue
			}

			change := "-"
			if pt.ChangePct != nil {
				change = *pt.ChangePct + "%"
			}
			ts := time.UnixMilli(pt.Timestamp).Format("15:04:05.000")
			fmt.Printf("[TICK] %-10s price=%-14s change=%-9s at=%s\n",
				pt.Symbol, pt.LastPrice, change, ts)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-done:
	case <-sigCh:
		logger.Info("shutting down...")
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
