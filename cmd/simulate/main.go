package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	baseURL     = flag.String("url", "http://localhost:8080/api/v1", "Booking API base URL")
	numVisitors = flag.Int("visitors", 50, "Number of visitors to walk through the flow")
	concurrency = flag.Int("concurrency", 10, "Visitors running at the same time")
	lockerRate  = flag.Float64("locker-rate", 0.5, "Probability a visitor rents lockers (0.0-1.0)")
	pollEvery   = flag.Duration("poll", 250*time.Millisecond, "Interval between locker assignment polls")
	timeout     = flag.Duration("timeout", 30*time.Second, "Per-request timeout")
)

type envelope struct {
	ErrorCode int             `json:"error_code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

type apiError struct {
	status int
	env    envelope
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status %d code %d: %s", e.status, e.env.ErrorCode, e.env.Message)
}

type catalog struct {
	TicketTypes []struct {
		ID string `json:"id"`
	} `json:"ticket_types"`
	TimeSlots []struct {
		ID        string `json:"id"`
		Available int    `json:"available"`
	} `json:"time_slots"`
	LockerOptions []struct {
		Duration string `json:"duration"`
	} `json:"locker_options"`
}

type stats struct {
	confirmed atomic.Int64
	declined  atomic.Int64
	failed    atomic.Int64
}

type visitor struct {
	id    int
	cli   *http.Client
	token string
	rnd   *rand.Rand
	cat   catalog
}

func main() {
	flag.Parse()

	if *numVisitors <= 0 || *concurrency <= 0 {
		fmt.Println("Error: --visitors and --concurrency must be positive")
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := &http.Client{Timeout: *timeout}

	fmt.Printf("Simulating %d visitors against %s (concurrency %d)\n", *numVisitors, *baseURL, *concurrency)

	var st stats
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*concurrency)

	for i := 1; i <= *numVisitors; i++ {
		v := &visitor{
			id:  i,
			cli: cli,
			rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(i))),
		}
		g.Go(func() error {
			err := v.run(gctx)
			var apiErr *apiError
			switch {
			case err == nil:
				st.confirmed.Add(1)
			case errors.As(err, &apiErr) && apiErr.status == http.StatusPaymentRequired:
				st.declined.Add(1)
				fmt.Printf("visitor %d: payment declined\n", v.id)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				st.failed.Add(1)
				fmt.Printf("visitor %d: %v\n", v.id, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Printf("Simulation interrupted: %v\n", err)
	}

	fmt.Println("\n=== Summary ===")
	fmt.Printf("Confirmed: %d\n", st.confirmed.Load())
	fmt.Printf("Declined:  %d\n", st.declined.Load())
	fmt.Printf("Failed:    %d\n", st.failed.Load())
	fmt.Printf("Elapsed:   %s\n", time.Since(start).Round(time.Millisecond))
}

func (v *visitor) run(ctx context.Context) error {
	var sess struct {
		Token string `json:"token"`
	}
	if err := v.do(ctx, http.MethodPost, "/sessions", nil, &sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	v.token = sess.Token

	if err := v.do(ctx, http.MethodGet, "/catalog", nil, &v.cat); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := v.pickTickets(ctx); err != nil {
		return err
	}
	if err := v.pickLockers(ctx); err != nil {
		return err
	}
	return v.checkout(ctx)
}

func (v *visitor) pickTickets(ctx context.Context) error {
	var tk struct {
		MinDate string `json:"min_date"`
		MaxDate string `json:"max_date"`
	}
	if err := v.do(ctx, http.MethodGet, "/tickets", nil, &tk); err != nil {
		return fmt.Errorf("tickets: %w", err)
	}

	first, err := time.Parse(time.DateOnly, tk.MinDate)
	if err != nil {
		return fmt.Errorf("parse min date: %w", err)
	}
	last, err := time.Parse(time.DateOnly, tk.MaxDate)
	if err != nil {
		return fmt.Errorf("parse max date: %w", err)
	}
	days := int(last.Sub(first).Hours()/24) + 1
	date := first.AddDate(0, 0, v.rnd.IntN(days)).Format(time.DateOnly)

	if err := v.do(ctx, http.MethodPut, "/tickets/date", map[string]string{"date": date}, nil); err != nil {
		return fmt.Errorf("select date: %w", err)
	}

	var open []string
	for _, s := range v.cat.TimeSlots {
		if s.Available > 0 {
			open = append(open, s.ID)
		}
	}
	if len(open) == 0 {
		return errors.New("no open time slots")
	}
	slot := open[v.rnd.IntN(len(open))]
	if err := v.do(ctx, http.MethodPut, "/tickets/slot", map[string]string{"time_slot": slot}, nil); err != nil {
		return fmt.Errorf("select slot: %w", err)
	}

	n := 1 + v.rnd.IntN(4)
	for range n {
		t := v.cat.TicketTypes[v.rnd.IntN(len(v.cat.TicketTypes))]
		if err := v.do(ctx, http.MethodPost, "/tickets/"+t.ID+"/increment", nil, nil); err != nil {
			return fmt.Errorf("add %s ticket: %w", t.ID, err)
		}
	}

	if err := v.do(ctx, http.MethodPost, "/tickets/continue", nil, nil); err != nil {
		return fmt.Errorf("continue tickets: %w", err)
	}
	return nil
}

func (v *visitor) pickLockers(ctx context.Context) error {
	if v.rnd.Float64() >= *lockerRate {
		if err := v.do(ctx, http.MethodPost, "/lockers/opt-out", nil, nil); err != nil {
			return fmt.Errorf("opt out: %w", err)
		}
		return v.continueLockers(ctx)
	}

	if err := v.do(ctx, http.MethodPost, "/lockers/opt-in", nil, nil); err != nil {
		return fmt.Errorf("opt in: %w", err)
	}
	for range v.rnd.IntN(3) {
		if err := v.do(ctx, http.MethodPost, "/lockers/count/increment", nil, nil); err != nil {
			return fmt.Errorf("add locker: %w", err)
		}
	}
	if len(v.cat.LockerOptions) > 0 {
		opt := v.cat.LockerOptions[v.rnd.IntN(len(v.cat.LockerOptions))]
		if err := v.do(ctx, http.MethodPut, "/lockers/duration", map[string]string{"duration": opt.Duration}, nil); err != nil {
			return fmt.Errorf("select duration: %w", err)
		}
	}

	ticker := time.NewTicker(*pollEvery)
	defer ticker.Stop()
	for {
		var lk struct {
			AssignmentStatus string `json:"assignment_status"`
		}
		if err := v.do(ctx, http.MethodGet, "/lockers", nil, &lk); err != nil {
			return fmt.Errorf("poll lockers: %w", err)
		}
		if lk.AssignmentStatus != "pending" {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return v.continueLockers(ctx)
}

func (v *visitor) continueLockers(ctx context.Context) error {
	if err := v.do(ctx, http.MethodPost, "/lockers/continue", nil, nil); err != nil {
		return fmt.Errorf("continue lockers: %w", err)
	}
	return nil
}

func (v *visitor) checkout(ctx context.Context) error {
	methods := []string{"card", "upi", "wallet"}
	form := map[string]string{
		"payment_method": methods[v.rnd.IntN(len(methods))],
		"email":          fmt.Sprintf("visitor%d@example.com", v.id),
		"first_name":     "Visitor",
		"last_name":      fmt.Sprintf("No.%d", v.id),
		"phone":          fmt.Sprintf("+1555%07d", v.id),
		"card_number":    "4242424242424242",
		"card_expiry":    "12/30",
		"cvv":            "123",
		"billing_zip":    "10001",
	}

	var out struct {
		Confirmation struct {
			BookingID string `json:"booking_id"`
		} `json:"confirmation"`
		Totals struct {
			GrandTotal int64 `json:"grand_total"`
		} `json:"totals"`
	}
	if err := v.do(ctx, http.MethodPost, "/checkout", form, &out); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	fmt.Printf("visitor %d: booked %s ($%d)\n", v.id, out.Confirmation.BookingID, out.Totals.GrandTotal)
	return nil
}

func (v *visitor) do(ctx context.Context, method, path string, body, dst any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, *baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	resp, err := v.cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &apiError{status: resp.StatusCode, env: env}
	}
	if dst != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, dst)
	}
	return nil
}
