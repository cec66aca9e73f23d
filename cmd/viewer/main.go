// Command viewer is a headless dashboard client. It joins a trial or
// flight session, prints presence, chat, and viewport traffic as it
// arrives, and accepts simple slash commands on stdin. It is the
// reference consumer of the session package and doubles as a smoke
// test tool against a running server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/flightdeck-io/flightdeck/internal/app"
	"github.com/flightdeck-io/flightdeck/internal/cache"
	"github.com/flightdeck-io/flightdeck/internal/database"
	"github.com/flightdeck-io/flightdeck/internal/session"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("flightdeck-viewer", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var (
		endpoint   string
		token      string
		trialID    string
		flightID   string
		historyDB  string
		configPath string
	)
	fs.StringVar(&endpoint, "endpoint", "ws://127.0.0.1:8000/ws", "Realtime server websocket URL")
	fs.StringVar(&token, "token", "", "Access token (or FLIGHTDECK_TOKEN)")
	fs.StringVar(&trialID, "trial", "", "Trial id to join")
	fs.StringVar(&flightID, "flight", "", "Flight id to join")
	fs.StringVar(&historyDB, "history", "", "Optional sqlite file for persistent chat history")
	fs.StringVar(&configPath, "config", "", "Path to configuration directory")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if token == "" {
		token = os.Getenv("FLIGHTDECK_TOKEN")
	}

	cfg, err := app.LoadConfig(configDirs(configPath)...)
	if err != nil {
		return err
	}
	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()

	var store cache.Store
	if historyDB != "" {
		db, dbErr := database.Open(database.Config{Driver: "sqlite", Path: historyDB})
		if dbErr != nil {
			return fmt.Errorf("open history database: %w", dbErr)
		}
		if dbErr := database.AutoMigrate(db); dbErr != nil {
			return fmt.Errorf("migrate history database: %w", dbErr)
		}
		store = cache.NewDatabaseStore(db)
	}

	sess, err := session.New(session.Options{
		Endpoint:       endpoint,
		Token:          token,
		TrialID:        trialID,
		FlightID:       flightID,
		Store:          store,
		Notifier:       func() error { fmt.Print("\a"); return nil },
		DebounceWindow: cfg.Session.DebounceWindow,
		Backoff:        cfg.Session.Reconnect.BackoffPolicy(),
		OnState: func(state session.State) {
			fmt.Printf("* connection %s\n", state)
		},
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, chartID := range []string{"altitude", "speed", "gyro", "angRate"} {
		sess.RegisterChart(chartID, printingChart(chartID))
	}

	sess.Connect()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Println("joined; /say <text>, /typing, /zoom <chart> <min> <max>, /who, /history, /quit")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := dispatch(sess, line); quit {
				return nil
			}
		}
	}
}

// printingChart displays viewport updates instead of redrawing a plot.
type printingChart string

func (c printingChart) ApplyTimeRange(min, max float64) {
	fmt.Printf("* chart %s zoomed to [%.3f, %.3f]\n", string(c), min, max)
}

func dispatch(sess *session.Session, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		return true
	case "/who":
		fmt.Printf("* here: %s\n", strings.Join(sess.Presence().Users(), ", "))
		if typing := sess.Presence().TypingUsers(); len(typing) > 0 {
			fmt.Printf("* typing: %s\n", strings.Join(typing, ", "))
		}
	case "/history":
		for _, entry := range sess.Chat().Entries() {
			fmt.Printf("  [%s] %s\n", entry.UserID, entry.Message)
		}
	case "/typing":
		sess.SetTyping(true)
		go func() {
			time.Sleep(3 * time.Second)
			sess.SetTyping(false)
		}()
	case "/zoom":
		if len(fields) != 4 {
			fmt.Println("usage: /zoom <chart> <min> <max>")
			return false
		}
		min, errMin := strconv.ParseFloat(fields[2], 64)
		max, errMax := strconv.ParseFloat(fields[3], 64)
		if errMin != nil || errMax != nil {
			fmt.Println("usage: /zoom <chart> <min> <max>")
			return false
		}
		sess.LocalZoom(fields[1], min, max)
	case "/say":
		sess.SendChat(strings.TrimSpace(strings.TrimPrefix(line, "/say")))
	default:
		sess.SendChat(line)
	}
	return false
}

func configDirs(path string) []string {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return []string{path}
}
