package ctl

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	uiapp "worktrack/internal/ui/app"
)

// connFeed adapts a WebSocket connection to the watch screen's Feed.
type connFeed struct {
	conn *websocket.Conn
}

func (f connFeed) Next() ([]byte, error) {
	_, msg, err := f.conn.ReadMessage()
	return msg, err
}

// Watch runs the interactive watch screen until the user quits.
func Watch(ctx context.Context, client *Client) error {
	conn, err := client.Dial(ctx)
	if err != nil {
		return err
	}
	defer closeConn(conn)

	program := tea.NewProgram(uiapp.NewModel(client, connFeed{conn: conn}), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

// Stream prints raw daemon events, one JSON document per line, until ctx is
// done or the stream closes.
func Stream(ctx context.Context, client *Client, w io.Writer) error {
	conn, err := client.Dial(ctx)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		closeConn(conn)
	}()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintln(w, string(msg))
	}
}

func closeConn(conn *websocket.Conn) {
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second),
	)
	_ = conn.Close()
}
