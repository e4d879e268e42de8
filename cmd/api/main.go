package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/config"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/handler"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/i18n"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/notify"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/service/assistant"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/service/chat"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/service/journal"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/service/responder"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/store/mood"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	classifier := crisis.NewClassifier(crisis.DefaultCorpus())
	composer := i18n.NewComposer(i18n.DefaultTables(), i18n.English)

	moodStore, err := mood.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open mood store at %s: %v", cfg.Store.Path, err)
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.Notify.Enabled() {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.Notify.AMQPURL, cfg.Notify.Queue)
		if err != nil {
			log.Printf("warning: counselor alert broker unavailable: %v", err)
			log.Println("falling back to log-only crisis alerts")
		} else {
			defer amqpNotifier.Close()
			notifier = amqpNotifier
			log.Printf("counselor alerts publishing to queue %q", cfg.Notify.Queue)
		}
	}

	assistantSvc, err := assistant.NewService(ctx, cfg.AI)
	if err != nil {
		log.Printf("warning: failed to initialize assistant service: %v", err)
		log.Println("continuing with scripted fallback responses only")
		assistantSvc, _ = assistant.NewService(ctx, config.AIConfig{})
	} else if assistantSvc.ModelEnabled() {
		log.Println("assistant chat model initialized successfully")
	} else {
		log.Println("ark credentials not configured, assistant runs on fallback responses")
	}

	responderURL := cfg.Responder.URL
	if responderURL == "" {
		// Point the chat pipeline at the locally hosted assistant.
		responderURL = fmt.Sprintf("http://127.0.0.1%s/api/assistant/chat", listenSuffix(cfg.Server.Addr))
		log.Printf("no external responder configured, using %s", responderURL)
	}
	responderClient := responder.NewClient(responderURL, cfg.Responder.Timeout)

	chatSvc := chat.NewService(chat.Options{
		Classifier:        classifier,
		Responder:         responderClient,
		Notifier:          notifier,
		AgentConnectDelay: cfg.Chat.AgentConnectDelay,
		FollowUpDelay:     cfg.Chat.FollowUpDelay,
	})

	journalSvc := journal.NewService(journal.Options{
		Classifier: classifier,
		Composer:   composer,
		Store:      moodStore,
		Notifier:   notifier,
		Debounce:   cfg.Journal.Debounce,
		PanelDelay: cfg.Journal.PanelDelay,
	})

	router := handler.NewRouter(chatSvc, journalSvc, assistantSvc, i18n.Language(cfg.Language))

	startServer(ctx, cfg.Server, router)
}

// listenSuffix normalizes the listener address to a ":port" suffix for
// building the loopback responder URL.
func listenSuffix(addr string) string {
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		return addr[idx:]
	}
	return ":" + addr
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Sahayata Kiran backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
