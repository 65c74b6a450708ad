package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkuleshov/pgdbot/internal/config"
	"github.com/mkuleshov/pgdbot/pkg/adapters/memory"
	redisstore "github.com/mkuleshov/pgdbot/pkg/adapters/redis"
	"github.com/mkuleshov/pgdbot/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored dialog sessions",
	Long:  `List, inspect, and remove dialog sessions from the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	Run: func(cmd *cobra.Command, args []string) {
		store := getSessionStore(cmd)
		identities, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(identities) == 0 {
			fmt.Println("No active sessions found.")
			return
		}

		fmt.Println("Active Sessions:")
		for _, id := range identities {
			fmt.Println("- " + id)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <identity>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		identity := args[0]
		store := getSessionStore(cmd)

		sess, err := store.Load(cmd.Context(), identity)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", identity, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling session: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <identity>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getSessionStore(cmd)
		hasError := false

		for _, identity := range args {
			if err := store.Delete(cmd.Context(), identity); err != nil {
				fmt.Printf("Error removing '%s': %v\n", identity, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", identity)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// getSessionStore builds the store the serve command would use. The
// memory backend is only useful here for smoke testing since it starts
// empty in every process.
func getSessionStore(cmd *cobra.Command) ports.SessionStore {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Store.Backend == config.StoreRedis {
		return redisstore.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB,
			redisstore.WithTTL(cfg.Store.SessionTTL.Std()))
	}
	return memory.NewStore(memory.WithTTL(cfg.Store.SessionTTL.Std()))
}
