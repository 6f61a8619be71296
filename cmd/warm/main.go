package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ryandielhenn/lrucache/pkg/cache"
	"github.com/ryandielhenn/lrucache/pkg/warmer"
)

func main() {
	keysFile := flag.String("keys", "", "path to a newline-delimited file of keys (default: read stdin)")
	concurrency := flag.Int("c", 16, "warmer concurrency")
	capacity := flag.Int("capacity", 10_000, "cache capacity")
	ttl := flag.Duration("ttl", 5*time.Minute, "cache TTL")
	latency := flag.Duration("latency", 10*time.Millisecond, "simulated backing-call latency per key")
	flag.Parse()

	keys, err := readKeys(*keysFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warm:", err)
		os.Exit(1)
	}

	c, err := cache.New(cache.Config[string, string]{
		Capacity:        *capacity,
		TTL:             *ttl,
		CleanupInterval: time.Minute,
		RecordStats:     true,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "warm: invalid cache configuration:", err)
		os.Exit(1)
	}
	defer c.Shutdown()

	simulatedLoader := func(k string) (string, error) {
		time.Sleep(*latency)
		return "warmed-" + k, nil
	}

	w, err := warmer.New(warmer.Config[string, string]{
		Concurrency: *concurrency,
		Loader:      simulatedLoader,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "warm: invalid warmer configuration:", err)
		os.Exit(1)
	}

	res := w.Warm(c, keys)
	fmt.Printf("success=%d fail=%d total=%d elapsedMs=%d finalSize=%d\n",
		res.SuccessCount, res.FailCount, res.TotalCount, res.ElapsedMs, c.Size())
}

func readKeys(path string) ([]string, error) {
	f := os.Stdin
	if path != "" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
	}

	var keys []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		keys = append(keys, line)
	}
	return keys, scanner.Err()
}
