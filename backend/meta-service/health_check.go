package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

const defaultTargets = "http://localhost:8082/health"

type checker struct {
	targets []string
	client  *http.Client
}

func main() {
	_ = godotenv.Load()
	utils.InitLogger("meta-service")

	port := os.Getenv("META_PORT")
	if port == "" {
		port = "8081"
	}
	c := newChecker(os.Getenv("HEALTH_TARGETS"))

	http.HandleFunc("/health", c.healthHandler)
	utils.Logger.Infof("Starting health check service on port %s (%d targets)", port, len(c.targets))
	utils.Logger.Fatal(http.ListenAndServe(":"+port, nil))
}

// newChecker takes a comma separated list of health URLs, falling back to
// the local listings-service.
func newChecker(raw string) *checker {
	if strings.TrimSpace(raw) == "" {
		raw = defaultTargets
	}
	var targets []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	return &checker{targets: targets, client: &http.Client{Timeout: 2 * time.Second}}
}

func (c *checker) healthHandler(w http.ResponseWriter, r *http.Request) {
	if c.allHealthy(r.Context()) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "Unhealthy")
	}
}

func (c *checker) allHealthy(ctx context.Context) bool {
	var wg sync.WaitGroup
	results := make(chan bool, len(c.targets)) // buffered to avoid goroutine leaks

	for _, url := range c.targets {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			results <- c.probe(ctx, u)
		}(url)
	}

	// Close channel after all goroutines finish.
	go func() {
		wg.Wait()
		close(results)
	}()

	healthy := true
	for ok := range results {
		if !ok {
			healthy = false
			// We still drain the channel to let all goroutines finish cleanly.
		}
	}
	return healthy
}

func (c *checker) probe(ctx context.Context, u string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		utils.Logger.WithError(err).Warnf("(Health Check) Bad target: %s", u)
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		utils.Logger.WithError(err).Warnf("(Health Check) Service unhealthy: %s", u)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		utils.Logger.WithField("status", resp.StatusCode).Warnf("(Health Check) Service unhealthy: %s", u)
		return false
	}
	return true
}
