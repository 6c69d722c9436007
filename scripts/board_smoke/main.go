package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Submits one message to a running request server, checks the redirect and
// looks for it on the history page.
func main() {
	if err := run(); err != nil {
		log.Printf("board_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "http://localhost:3000", "request server base URL")
	user := flag.String("user", "tester", "username to submit")
	text := flag.String("text", "hello from smoke test", "message text to submit")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	form := url.Values{"username": {*user}, "message": {*text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *addr+"/", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build submit: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		return fmt.Errorf("submit: unexpected status %d", resp.StatusCode)
	}
	fmt.Printf("Submitted: status=%d location=%s\n", resp.StatusCode, resp.Header.Get("Location"))

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, *addr+"/history.html", nil)
	if err != nil {
		return fmt.Errorf("build history: %w", err)
	}
	resp, err = client.Do(req)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if !strings.Contains(string(body), *text) {
		return fmt.Errorf("history does not contain %q", *text)
	}
	fmt.Println("History contains the submitted message")
	return nil
}
