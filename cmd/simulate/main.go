// Command simulate hammers the booking API with concurrent create requests
// for a single doctor and day, to observe conflict behavior under contention.
// Every successful booking occupies a slot, so by the end of a run the sum of
// successes can never exceed the number of slots in the doctor's day.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	Latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, success, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case success:
		atomic.AddInt64(&om.Success, 1)
	case conflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))

	idx := func(pct int) int {
		i := len(latencies) * pct / 100
		if i >= len(latencies) {
			i = len(latencies) - 1
		}
		return i
	}
	return avg, latencies[idx(50)], latencies[idx(95)]
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "simulate").Logger()

	_ = godotenv.Load()

	cfg := SimConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://127.0.0.1:8080"),
		Duration:   getDurationEnv("SIM_DURATION", 30*time.Second),
		Workers:    getIntEnv("SIM_WORKERS", 16),
	}

	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}

	doctorID, slotCount, err := createTargetDoctor(client, cfg.APIBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("create target doctor")
	}
	logger.Info().Str("doctor_id", doctorID).Int("slots", slotCount).
		Int("workers", cfg.Workers).Dur("duration", cfg.Duration).Msg("simulation starting")

	day := time.Now().UTC().AddDate(0, 0, 1)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)

	var bookings, reads OperationMetrics

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				if rng.Intn(10) < 8 {
					bookRandomSlot(client, cfg.APIBaseURL, doctorID, dayStart, slotCount, rng, &bookings)
				} else {
					listSlots(client, cfg.APIBaseURL, doctorID, dayStart, &reads)
				}
			}
		}(time.Now().UnixNano() + int64(w))
	}
	wg.Wait()

	report(logger, "bookings", &bookings)
	report(logger, "slot reads", &reads)

	if bookings.Success > int64(slotCount) {
		logger.Error().Int64("successes", bookings.Success).Int("slots", slotCount).
			Msg("MORE SUCCESSFUL BOOKINGS THAN SLOTS: double booking detected")
		os.Exit(1)
	}
	logger.Info().Msg("no double booking observed")
}

func createTargetDoctor(client *http.Client, baseURL string) (string, int, error) {
	body, _ := json.Marshal(map[string]any{
		"name": "Dr. " + gofakeit.Name(),
		"workingHours": map[string]string{
			"start": "09:00",
			"end":   "17:00",
		},
		"specialization": "General Practice",
	})

	resp, err := client.Post(baseURL+"/doctors", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, b)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", 0, err
	}

	// 09:00 to 17:00 on a half-hour grid.
	return created.ID, 16, nil
}

func bookRandomSlot(client *http.Client, baseURL, doctorID string, dayStart time.Time, slotCount int, rng *rand.Rand, m *OperationMetrics) {
	startsAt := dayStart.Add(time.Duration(rng.Intn(slotCount)) * 30 * time.Minute)

	body, _ := json.Marshal(map[string]any{
		"doctorId":        doctorID,
		"date":            startsAt.Format(time.RFC3339),
		"duration":        30,
		"appointmentType": "Routine Check-Up",
		"patientName":     gofakeit.Name(),
	})

	start := time.Now()
	resp, err := client.Post(baseURL+"/appointments", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		m.Record(latency, false, false)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	m.Record(latency, resp.StatusCode == http.StatusCreated, resp.StatusCode == http.StatusConflict)
}

func listSlots(client *http.Client, baseURL, doctorID string, dayStart time.Time, m *OperationMetrics) {
	url := fmt.Sprintf("%s/doctors/%s/slots?date=%s", baseURL, doctorID, dayStart.Format("2006-01-02"))

	start := time.Now()
	resp, err := client.Get(url)
	latency := time.Since(start)
	if err != nil {
		m.Record(latency, false, false)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	m.Record(latency, resp.StatusCode == http.StatusOK, false)
}

func report(logger zerolog.Logger, name string, m *OperationMetrics) {
	avg, p50, p95 := m.Stats()
	logger.Info().
		Str("operation", name).
		Int64("total", atomic.LoadInt64(&m.Total)).
		Int64("success", atomic.LoadInt64(&m.Success)).
		Int64("conflict", atomic.LoadInt64(&m.Conflict)).
		Int64("error", atomic.LoadInt64(&m.Error)).
		Dur("avg", avg).
		Dur("p50", p50).
		Dur("p95", p95).
		Msg("results")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
