// Command loadtest drives query traffic against a running reactledger
// server and prints per-endpoint latency percentiles.
package main

import (
	"flag"
	"fmt"
	"io"
	"maps"
	"math/rand/v2"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

var (
	baseURL    = flag.String("url", "http://127.0.0.1:8080", "server base URL")
	numWorkers = flag.Int("workers", 50, "concurrent workers")
	duration   = flag.Duration("duration", 10*time.Second, "duration of each phase")
	users      = flag.String("users", "", "comma separated user IDs to query (default: 1..500)")
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	flag.Parse()
	ids := userIDs()

	fmt.Println("=== Reaction Ledger Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Users: %d\n\n", *numWorkers, *duration, len(ids))

	fmt.Print("Waiting for server... ")
	version, ok := waitForServer()
	if !ok {
		fmt.Println("FAILED: server not responding")
		return
	}
	fmt.Printf("OK (snapshot %q)\n", version)

	fmt.Println("\n--- Phase 1: Cold queries (text and JSON) ---")
	runPhase(func(rng *rand.Rand) result {
		return doQuery(rng, ids, rng.Float64() < 0.3)
	})

	fmt.Println("\n--- Phase 2: Hot set (20 users, mostly cached) ---")
	hot := ids[:min(20, len(ids))]
	runPhase(func(rng *rand.Rand) result {
		if rng.Float64() < 0.05 {
			return doGet("GET /rebuild/status", "/rebuild/status")
		}
		return doQuery(rng, hot, false)
	})
}

func userIDs() []string {
	if *users != "" {
		return strings.Split(*users, ",")
	}
	ids := make([]string, 0, 500)
	for i := range 500 {
		ids = append(ids, fmt.Sprint(i+1))
	}
	return ids
}

func waitForServer() (string, bool) {
	for range 30 {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			var health struct {
				SnapshotVersion string `json:"snapshot_version"`
			}
			err = json.NewDecoder(resp.Body).Decode(&health)
			resp.Body.Close()
			if err == nil {
				return health.SnapshotVersion, true
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return "", false
}

func runPhase(workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := range *numWorkers {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, seed>>1))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Inc()
				}
			}
		}(rand.Uint64() + uint64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(*duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, totalOps.Load())
}

func printResults(allResults map[string]*stats, totalOps int64) {
	var totalErrors int64

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range slices.Sorted(maps.Keys(allResults)) {
		s := allResults[ep]
		totalErrors += s.errors
		slices.Sort(s.latencies)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)), fmtDur(percentile(s.latencies, 0.95)), fmtDur(percentile(s.latencies, 0.99)))
	}

	fmt.Println("  " + strings.Repeat("-", 88))
	if totalOps == 0 {
		fmt.Println("  Total: 0 reqs")
		return
	}
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func doQuery(rng *rand.Rand, ids []string, text bool) result {
	kind := []string{"credit", "debit", "balance"}[rng.IntN(3)]
	path := "/" + kind + "?u=" + ids[rng.IntN(len(ids))]
	endpoint := "GET /" + kind
	if text {
		path += "&format=text"
		endpoint += " (text)"
	}
	return doGet(endpoint, path)
}

func doGet(endpoint, path string) result {
	start := time.Now()
	resp, err := httpClient.Get(*baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := min(int(float64(len(d))*p), len(d)-1)
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
