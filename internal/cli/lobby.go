package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tetranet/tetranet/internal/protocol"
)

const joinWait = 5 * time.Second

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Lobby operations over the event channel",
	}

	cmd.AddCommand(newLobbyCreateCmd())
	cmd.AddCommand(newLobbyJoinCmd())

	return cmd
}

func newLobbyCreateCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a lobby (seed is derived from the username)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gc, err := DialGame(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer gc.Close()

			if err := gc.Emit(protocol.EvtCreateLobby, args[0]); err != nil {
				return err
			}
			return awaitLobbyJoin(gc, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Stay connected and print lobby events")

	return cmd
}

func newLobbyJoinCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "join <seed> <username>",
		Short: "Join an existing lobby",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gc, err := DialGame(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer gc.Close()

			payload := protocol.JoinUser{Seed: args[0], Username: args[1]}
			if err := gc.Emit(protocol.EvtJoinUser, payload); err != nil {
				return err
			}
			return awaitLobbyJoin(gc, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Stay connected and print lobby events")

	return cmd
}

func awaitLobbyJoin(gc *GameClient, watch bool) error {
	msg, err := gc.WaitFor(joinWait, protocol.EvtLobbyJoin, protocol.EvtGoTo)
	if err != nil {
		return err
	}
	if msg.Event == protocol.EvtGoTo {
		return fmt.Errorf("rejected: %v", msg.Data)
	}

	out := NewOutput(cfg.Output)
	var joined LobbyResult
	if raw, err := json.Marshal(msg.Data); err == nil {
		_ = json.Unmarshal(raw, &joined)
	}
	out.Print(joined)

	if roster, err := gc.Ask(protocol.SigGetPlayerList); err == nil {
		var names []string
		if json.Unmarshal(roster, &names) == nil && len(names) > 0 {
			out.PrintMessage(fmt.Sprintf("Players: %v", names))
		}
	}

	if !watch {
		return nil
	}
	return watchEvents(gc)
}

// watchEvents prints lobby events until the connection drops or the user
// interrupts.
func watchEvents(gc *GameClient) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case msg, ok := <-gc.Events:
			if !ok {
				fmt.Println("Disconnected")
				return nil
			}
			printEvent(msg)
		case <-sigCh:
			fmt.Println("\nDisconnected")
			return nil
		}
	}
}

func printEvent(msg protocol.ServerMessage) {
	if cfg.Output == "json" {
		data, _ := json.Marshal(msg)
		fmt.Println(string(data))
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	if msg.Data == nil {
		fmt.Printf("[%s] %s\n", timestamp, msg.Event)
		return
	}
	fmt.Printf("[%s] %s: %v\n", timestamp, msg.Event, msg.Data)
}
