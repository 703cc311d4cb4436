package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"letterchat/internal/domain"
	"letterchat/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	Long: `Start an HTTP server exposing the question-answering pipeline.

POST /api/chat accepts {"message": "..."} and returns {"reply": "..."}.
Internal failures produce a structured JSON error with status 500; raw
errors and stack traces are never sent to the client.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

// answerer is the only capability the HTTP shell needs from the core.
type answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatReply struct {
	Reply string `json:"reply"`
}

type errorReply struct {
	Error string `json:"error"`
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	chat, vs, err := newChat(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer vs.Close()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", chatHandler(chat))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Server.StaticDir != "" {
		if _, err := os.Stat(cfg.Server.StaticDir); err == nil {
			mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))
		}
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Listening on %s\n", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// chatHandler adapts the orchestrator to the HTTP contract. The request
// context carries client disconnects into the pipeline's network calls.
func chatHandler(chat answerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, errorReply{Error: "method not allowed"})
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid request body"})
			return
		}
		if req.Message == "" {
			writeJSON(w, http.StatusBadRequest, errorReply{Error: "message is required"})
			return
		}

		reply, err := chat.Answer(r.Context(), req.Message)
		if err != nil {
			logger.Warn("chat request failed: kind=%s", domain.FailureKind(err))
			writeJSON(w, http.StatusInternalServerError, errorReply{Error: reply})
			return
		}
		writeJSON(w, http.StatusOK, chatReply{Reply: reply})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
