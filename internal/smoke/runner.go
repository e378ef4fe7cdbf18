package smoke

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/itemstore/internal/domain/model"
	"github.com/okian/itemstore/internal/domain/types"
	"github.com/okian/itemstore/pkg/logger"
)

// session carries state between scenario steps.
type session struct {
	cfg     *Config
	client  *HTTPClient
	log     logger.Logger
	initial []model.Item
	item    model.Item
}

type step struct {
	name string
	run  func(ctx context.Context, s *session) error
}

// scenario is the ordered list of checks. Later steps rely on earlier ones.
var scenario = []step{
	{"health", checkHealth},
	{"list", listItems},
	{"create", createItem},
	{"create duplicate", createDuplicate},
	{"get", getItem},
	{"search", searchItem},
	{"search limit", searchLimit},
	{"update", updateItem},
	{"delete", deleteItem},
	{"get after delete", getAfterDelete},
}

// Run drives the create/read/update/delete scenario against cfg.BaseURL and
// stops at the first failing step.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	s := &session{
		cfg:    cfg,
		client: newHTTPClient(cfg.BaseURL, cfg.Timeout),
		log:    log,
	}

	log.Info(ctx, "starting item store smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Duration("timeout", cfg.Timeout))

	var runErr error
	for _, st := range scenario {
		start := time.Now()
		err := st.run(ctx, s)
		res := StepResult{Name: st.name, Err: err, Duration: time.Since(start)}
		stats.Steps = append(stats.Steps, res)
		if err != nil {
			stats.Failed++
			log.Error(ctx, "step failed", logger.String("step", st.name), logger.Error(err))
			runErr = fmt.Errorf("step %q: %w", st.name, err)
			break
		}
		stats.Passed++
		log.Info(ctx, "step passed", logger.String("step", st.name), logger.Duration("duration", res.Duration))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, runErr
}

// call performs a request and logs the body when verbose.
func (s *session) call(ctx context.Context, method, path string, body any) (response, error) {
	resp, err := s.client.do(ctx, method, path, body)
	if err != nil {
		return resp, err
	}
	if s.cfg.Verbose {
		s.log.Debug(ctx, "response",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.Status),
			logger.String("body", string(resp.Body)))
	}
	return resp, nil
}

func itemPath(id int) string { return "/items/" + strconv.Itoa(id) }

// checkHealth verifies the service is running.
func checkHealth(ctx context.Context, s *session) error {
	resp, err := s.call(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	return resp.expect(http.StatusOK)
}

// listItems records the starting registry and picks the scratch item.
func listItems(ctx context.Context, s *session) error {
	resp, err := s.call(ctx, http.MethodGet, "/items/", nil)
	if err != nil {
		return err
	}
	if err := resp.expect(http.StatusOK); err != nil {
		return err
	}
	if err := resp.decode(&s.initial); err != nil {
		return err
	}

	id := s.cfg.ItemID
	if id == 0 {
		for _, it := range s.initial {
			if it.ID >= id {
				id = it.ID + 1
			}
		}
		if id == 0 {
			id = 1
		}
	}
	s.item = model.Item{
		ID:          id,
		Name:        "smoke-" + uuid.NewString(),
		Price:       9.99,
		Description: model.StringPtr("created by smoke run"),
	}
	return nil
}

func createItem(ctx context.Context, s *session) error {
	resp, err := s.call(ctx, http.MethodPost, "/items/", s.item)
	if err != nil {
		return err
	}
	if err := resp.expect(http.StatusCreated); err != nil {
		return err
	}
	var got model.Item
	if err := resp.decode(&got); err != nil {
		return err
	}
	return sameItem(got, s.item)
}

func createDuplicate(ctx context.Context, s *session) error {
	resp, err := s.call(ctx, http.MethodPost, "/items/", s.item)
	if err != nil {
		return err
	}
	return resp.expect(http.StatusBadRequest)
}

func getItem(ctx context.Context, s *session) error {
	resp, err := s.call(ctx, http.MethodGet, itemPath(s.item.ID), nil)
	if err != nil {
		return err
	}
	if err := resp.expect(http.StatusOK); err != nil {
		return err
	}
	var got model.Item
	if err := resp.decode(&got); err != nil {
		return err
	}
	return sameItem(got, s.item)
}

// searchItem looks the scratch item up by its unique name.
func searchItem(ctx context.Context, s *session) error {
	q := url.Values{"q": {s.item.Name}}
	resp, err := s.call(ctx, http.MethodGet, "/items/search?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	if err := resp.expect(http.StatusOK); err != nil {
		return err
	}
	var res types.SearchResult
	if err := resp.decode(&res); err != nil {
		return err
	}
	if res.Count != 1 || len(res.Results) != 1 {
		return fmt.Errorf("%w: search %q returned count %d with %d results", ErrMismatch, s.item.Name, res.Count, len(res.Results))
	}
	return sameItem(res.Results[0], s.item)
}

// searchLimit checks that limit truncates results but not the count.
func searchLimit(ctx context.Context, s *session) error {
	resp, err := s.call(ctx, http.MethodGet, "/items/search?limit=0", nil)
	if err != nil {
		return err
	}
	if err := resp.expect(http.StatusOK); err != nil {
		return err
	}
	var res types.SearchResult
	if err := resp.decode(&res); err != nil {
		return err
	}
	want := len(s.initial) + 1
	if len(res.Results) != 0 || res.Count != want {
		return fmt.Errorf("%w: limit=0 returned count %d with %d results, want count %d", ErrMismatch, res.Count, len(res.Results), want)
	}
	return nil
}

func updateItem(ctx context.Context, s *session) error {
	updated := s.item
	updated.Name += "-updated"
	updated.Price *= 2
	updated.Description = nil

	resp, err := s.call(ctx, http.MethodPut, itemPath(s.item.ID), updated)
	if err != nil {
		return err
	}
	if err := resp.expect(http.StatusOK); err != nil {
		return err
	}
	var got model.Item
	if err := resp.decode(&got); err != nil {
		return err
	}
	if err := sameItem(got, updated); err != nil {
		return err
	}
	s.item = updated
	return nil
}

func deleteItem(ctx context.Context, s *session) error {
	resp, err := s.call(ctx, http.MethodDelete, itemPath(s.item.ID), nil)
	if err != nil {
		return err
	}
	if err := resp.expect(http.StatusOK); err != nil {
		return err
	}
	var res types.DeleteResult
	if err := resp.decode(&res); err != nil {
		return err
	}
	return sameItem(res.Deleted, s.item)
}

func getAfterDelete(ctx context.Context, s *session) error {
	resp, err := s.call(ctx, http.MethodGet, itemPath(s.item.ID), nil)
	if err != nil {
		return err
	}
	return resp.expect(http.StatusNotFound)
}

// sameItem compares two items field by field.
func sameItem(got, want model.Item) error {
	gotDesc, wantDesc := "<nil>", "<nil>"
	if got.Description != nil {
		gotDesc = *got.Description
	}
	if want.Description != nil {
		wantDesc = *want.Description
	}
	if got.ID != want.ID || got.Name != want.Name || got.Price != want.Price ||
		(got.Description == nil) != (want.Description == nil) || gotDesc != wantDesc {
		return fmt.Errorf("%w: got %+v (description %s), want %+v (description %s)",
			ErrMismatch, got, gotDesc, want, wantDesc)
	}
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("steps", len(stats.Steps)),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))
}
